package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/ad-management/internal"
	userDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/user"
	"github.com/frahmantamala/ad-management/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	model := user.ToDataModel(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}

	return user.FromDataModel(model), nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var model userDatamodel.User

	err := r.db.WithContext(ctx).First(&model, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	return user.FromDataModel(&model), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model userDatamodel.User

	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	return user.FromDataModel(&model), nil
}
