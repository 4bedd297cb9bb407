package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/adgraphic"
	graphicDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/adgraphic"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, g *adgraphic.AdGraphic) (*adgraphic.AdGraphic, error) {
	model := adgraphic.ToDataModel(g)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}

	return adgraphic.FromDataModel(model), nil
}

func (r *Repository) GetByID(ctx context.Context, graphicID int64) (*adgraphic.AdGraphic, error) {
	var model graphicDatamodel.AdGraphic

	err := r.db.WithContext(ctx).First(&model, graphicID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrGraphicNotFound
		}
		return nil, err
	}

	return adgraphic.FromDataModel(&model), nil
}

func (r *Repository) Update(ctx context.Context, g *adgraphic.AdGraphic) (*adgraphic.AdGraphic, error) {
	model := adgraphic.ToDataModel(g)

	err := r.db.WithContext(ctx).
		Model(&graphicDatamodel.AdGraphic{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"file_name": model.FileName,
		}).Error
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, g.ID)
}

// UpdateFileURL swaps the local path for the hosted URL once the media
// pipeline finishes.
func (r *Repository) UpdateFileURL(ctx context.Context, graphicID int64, fileURL string) error {
	return r.db.WithContext(ctx).
		Model(&graphicDatamodel.AdGraphic{}).
		Where("id = ?", graphicID).
		Update("file_url", fileURL).Error
}

func (r *Repository) Delete(ctx context.Context, graphicID int64) error {
	return r.db.WithContext(ctx).Delete(&graphicDatamodel.AdGraphic{}, graphicID).Error
}

// ResolveOwner reads only the owning user id, for authorization checks.
func (r *Repository) ResolveOwner(ctx context.Context, graphicID int64) (int64, error) {
	var userID int64

	err := r.db.WithContext(ctx).
		Model(&graphicDatamodel.AdGraphic{}).
		Select("user_id").
		Where("id = ?", graphicID).
		Take(&userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, internal.ErrGraphicNotFound
		}
		return 0, err
	}

	return userID, nil
}
