package adattribute

import (
	"time"

	attrDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/adattribute"
)

// AdAttribute is a typed key/value pair attached to an ad. Ownership is
// derived from the parent ad, via the stored AdID.
type AdAttribute struct {
	ID        int64     `json:"id"`
	AdID      int64     `json:"ad_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDataModel(a *AdAttribute) *attrDatamodel.AdAttribute {
	return &attrDatamodel.AdAttribute{
		ID:        a.ID,
		AdID:      a.AdID,
		Key:       a.Key,
		Value:     a.Value,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func FromDataModel(m *attrDatamodel.AdAttribute) *AdAttribute {
	return &AdAttribute{
		ID:        m.ID,
		AdID:      m.AdID,
		Key:       m.Key,
		Value:     m.Value,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
