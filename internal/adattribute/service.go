package adattribute

import (
	"context"
	"strings"

	"github.com/frahmantamala/ad-management/internal"
)

type Repository interface {
	Create(ctx context.Context, a *AdAttribute) (*AdAttribute, error)
	GetByID(ctx context.Context, attributeID int64) (*AdAttribute, error)
	ListByAd(ctx context.Context, adID int64) ([]AdAttribute, error)
	Update(ctx context.Context, a *AdAttribute) (*AdAttribute, error)
	Delete(ctx context.Context, attributeID int64) error
	ResolveOwner(ctx context.Context, attributeID int64) (int64, error)
}

// AdChecker confirms the parent ad exists before an attribute is attached.
type AdChecker interface {
	ResolveOwner(ctx context.Context, adID int64) (int64, error)
}

type Service struct {
	repo Repository
	ads  AdChecker
}

func NewService(repo Repository, ads AdChecker) *Service {
	return &Service{repo: repo, ads: ads}
}

// Create attaches a new attribute to an existing ad. Any role the rule table
// admits may attach to any ad; only update and delete are owner-gated. The
// adId comes from the body, so the existence check happens here rather than
// in the authorization middleware.
func (s *Service) Create(ctx context.Context, dto CreateDTO) (*AdAttribute, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ads.ResolveOwner(ctx, dto.AdID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &AdAttribute{
		AdID:  dto.AdID,
		Key:   strings.TrimSpace(dto.Key),
		Value: strings.TrimSpace(dto.Value),
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to create ad attribute", err)
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, attributeID int64) (*AdAttribute, error) {
	return s.repo.GetByID(ctx, attributeID)
}

func (s *Service) ListByAd(ctx context.Context, adID int64) ([]AdAttribute, error) {
	attrs, err := s.repo.ListByAd(ctx, adID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list ad attributes", err)
	}
	return attrs, nil
}

func (s *Service) Update(ctx context.Context, attributeID int64, dto UpdateDTO) (*AdAttribute, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, attributeID)
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(dto.Key); key != "" {
		current.Key = key
	}
	if value := strings.TrimSpace(dto.Value); value != "" {
		current.Value = value
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return nil, internal.NewInternalError("failed to update ad attribute", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, attributeID int64) error {
	if _, err := s.repo.GetByID(ctx, attributeID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, attributeID); err != nil {
		return internal.NewInternalError("failed to delete ad attribute", err)
	}
	return nil
}
