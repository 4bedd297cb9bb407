package ad

import (
	"strings"

	"github.com/frahmantamala/ad-management/internal"
)

// CreateDTO is the transport shape for POST /ads.
type CreateDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (d CreateDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Description) == "" {
		return internal.NewValidationFieldError("description", "description is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateDTO is the transport shape for PUT /ads/{id}. Empty fields keep
// their current value.
type UpdateDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (d UpdateDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Description) == "" {
		return internal.NewValidationError("at least one of title or description is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
