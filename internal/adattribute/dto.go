package adattribute

import (
	"strings"

	"github.com/frahmantamala/ad-management/internal"
)

// CreateDTO is the transport shape for POST /ad-attributes.
type CreateDTO struct {
	AdID  int64  `json:"ad_id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (d CreateDTO) Validate() error {
	if d.AdID <= 0 {
		return internal.NewValidationFieldError("ad_id", "ad_id is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Key) == "" {
		return internal.NewValidationFieldError("key", "key is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Value) == "" {
		return internal.NewValidationFieldError("value", "value is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateDTO is the transport shape for PUT /ad-attributes/{id}. The parent
// ad of an attribute never changes.
type UpdateDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (d UpdateDTO) Validate() error {
	if strings.TrimSpace(d.Key) == "" && strings.TrimSpace(d.Value) == "" {
		return internal.NewValidationError("at least one of key or value is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
