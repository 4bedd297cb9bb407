package ad

import (
	"context"
	"strings"

	"github.com/frahmantamala/ad-management/internal"
)

type Repository interface {
	Create(ctx context.Context, a *Ad) (*Ad, error)
	GetByID(ctx context.Context, adID int64) (*Ad, error)
	List(ctx context.Context) ([]Ad, error)
	Update(ctx context.Context, a *Ad) (*Ad, error)
	Delete(ctx context.Context, adID int64) error
	ResolveOwner(ctx context.Context, adID int64) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID int64, dto CreateDTO) (*Ad, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Ad{
		UserID:      userID,
		Title:       strings.TrimSpace(dto.Title),
		Description: strings.TrimSpace(dto.Description),
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to create ad", err)
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, adID int64) (*Ad, error) {
	return s.repo.GetByID(ctx, adID)
}

func (s *Service) List(ctx context.Context) ([]Ad, error) {
	ads, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list ads", err)
	}
	return ads, nil
}

// Update applies non-empty fields to the stored ad. Ownership was already
// enforced by the authorization middleware.
func (s *Service) Update(ctx context.Context, adID int64, dto UpdateDTO) (*Ad, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(dto.Title); title != "" {
		current.Title = title
	}
	if desc := strings.TrimSpace(dto.Description); desc != "" {
		current.Description = desc
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return nil, internal.NewInternalError("failed to update ad", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, adID int64) error {
	if _, err := s.repo.GetByID(ctx, adID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, adID); err != nil {
		return internal.NewInternalError("failed to delete ad", err)
	}
	return nil
}
