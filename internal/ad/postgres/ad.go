package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/ad"
	adDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/ad"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *ad.Ad) (*ad.Ad, error) {
	model := ad.ToDataModel(a)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}

	return ad.FromDataModel(model), nil
}

func (r *Repository) GetByID(ctx context.Context, adID int64) (*ad.Ad, error) {
	var model adDatamodel.Ad

	err := r.db.WithContext(ctx).First(&model, adID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAdNotFound
		}
		return nil, err
	}

	return ad.FromDataModel(&model), nil
}

func (r *Repository) List(ctx context.Context) ([]ad.Ad, error) {
	var models []adDatamodel.Ad

	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	ads := make([]ad.Ad, 0, len(models))
	for i := range models {
		ads = append(ads, *ad.FromDataModel(&models[i]))
	}
	return ads, nil
}

func (r *Repository) Update(ctx context.Context, a *ad.Ad) (*ad.Ad, error) {
	model := ad.ToDataModel(a)

	err := r.db.WithContext(ctx).
		Model(&adDatamodel.Ad{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":       model.Title,
			"description": model.Description,
		}).Error
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, a.ID)
}

func (r *Repository) Delete(ctx context.Context, adID int64) error {
	return r.db.WithContext(ctx).Delete(&adDatamodel.Ad{}, adID).Error
}

// ResolveOwner reads only the owning user id, for authorization checks.
func (r *Repository) ResolveOwner(ctx context.Context, adID int64) (int64, error) {
	var userID int64

	err := r.db.WithContext(ctx).
		Model(&adDatamodel.Ad{}).
		Select("user_id").
		Where("id = ?", adID).
		Take(&userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, internal.ErrAdNotFound
		}
		return 0, err
	}

	return userID, nil
}
