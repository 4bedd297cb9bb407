package ad

import (
	"time"

	adDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/ad"
)

// Ad is an advertisement owned by the user who created it.
type Ad struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToDataModel(a *Ad) *adDatamodel.Ad {
	return &adDatamodel.Ad{
		ID:          a.ID,
		UserID:      a.UserID,
		Title:       a.Title,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModel(m *adDatamodel.Ad) *Ad {
	return &Ad{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
