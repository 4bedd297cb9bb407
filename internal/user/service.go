package user

import (
	"context"
	"strings"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

// Register validates the payload, hashes the password exactly once and
// persists the new user. Duplicate emails are a conflict.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	created, err := s.repo.Create(ctx, &User{
		Email:        email,
		Name:         strings.TrimSpace(dto.Name),
		PasswordHash: hash,
		Role:         dto.Role,
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	return created, nil
}

// GetByID loads one user.
func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}
