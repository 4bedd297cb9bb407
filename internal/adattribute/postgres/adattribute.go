package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/adattribute"
	adDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/ad"
	attrDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/adattribute"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *adattribute.AdAttribute) (*adattribute.AdAttribute, error) {
	model := adattribute.ToDataModel(a)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}

	return adattribute.FromDataModel(model), nil
}

func (r *Repository) GetByID(ctx context.Context, attributeID int64) (*adattribute.AdAttribute, error) {
	var model attrDatamodel.AdAttribute

	err := r.db.WithContext(ctx).First(&model, attributeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAttributeNotFound
		}
		return nil, err
	}

	return adattribute.FromDataModel(&model), nil
}

func (r *Repository) ListByAd(ctx context.Context, adID int64) ([]adattribute.AdAttribute, error) {
	var models []attrDatamodel.AdAttribute

	err := r.db.WithContext(ctx).
		Where("ad_id = ?", adID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attrs := make([]adattribute.AdAttribute, 0, len(models))
	for i := range models {
		attrs = append(attrs, *adattribute.FromDataModel(&models[i]))
	}
	return attrs, nil
}

func (r *Repository) Update(ctx context.Context, a *adattribute.AdAttribute) (*adattribute.AdAttribute, error) {
	model := adattribute.ToDataModel(a)

	err := r.db.WithContext(ctx).
		Model(&attrDatamodel.AdAttribute{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"key":   model.Key,
			"value": model.Value,
		}).Error
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, a.ID)
}

func (r *Repository) Delete(ctx context.Context, attributeID int64) error {
	return r.db.WithContext(ctx).Delete(&attrDatamodel.AdAttribute{}, attributeID).Error
}

// ResolveOwner walks attribute -> parent ad -> owning user, using the
// attribute's stored ad id. Two reads, both by primary key.
func (r *Repository) ResolveOwner(ctx context.Context, attributeID int64) (int64, error) {
	var adID int64

	err := r.db.WithContext(ctx).
		Model(&attrDatamodel.AdAttribute{}).
		Select("ad_id").
		Where("id = ?", attributeID).
		Take(&adID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, internal.ErrAttributeNotFound
		}
		return 0, err
	}

	var userID int64
	err = r.db.WithContext(ctx).
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
