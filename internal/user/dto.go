package user

import (
	"net/mail"
	"strings"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/auth"
)

const minPasswordLength = 6

// RegisterDTO is the transport shape for POST /users.
type RegisterDTO struct {
	Email                string `json:"email"`
	Name                 string `json:"name"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"`
}

// Validate checks the registration payload. An empty role defaults to
// advertiser; an unknown role is rejected.
func (d *RegisterDTO) Validate() error {
	var errs []internal.ValidationError

	if d.Email == "" {
		errs = append(errs, internal.ValidationError{
			Field: "email", Message: "email is required", Code: string(internal.ErrCodeInvalidEmail),
		})
	} else if _, err := mail.ParseAddress(d.Email); err != nil {
		errs = append(errs, internal.ValidationError{
			Field: "email", Message: "email is not a valid address", Code: string(internal.ErrCodeInvalidEmail),
		})
	}

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, internal.ValidationError{
			Field: "name", Message: "name is required", Code: string(internal.ErrCodeValidationFailed),
		})
	}

	if len(d.Password) < minPasswordLength {
		errs = append(errs, internal.ValidationError{
			Field: "password", Message: "password must be at least 6 characters", Code: string(internal.ErrCodePasswordTooShort),
		})
	}

	if d.Password != d.PasswordConfirmation {
		errs = append(errs, internal.ValidationError{
			Field: "password_confirmation", Message: "passwords do not match", Code: string(internal.ErrCodePasswordMismatch),
		})
	}

	if d.Role == "" {
		d.Role = string(auth.RoleAdvertiser)
	} else if role, err := auth.ParseRole(d.Role); err != nil {
		errs = append(errs, internal.ValidationError{
			Field: "role", Message: "role is not recognized", Code: string(internal.ErrCodeInvalidRole),
		})
	} else {
		// persist the canonical form so rule lookups match
		d.Role = string(role)
	}

	if len(errs) > 0 {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: errs})
	}
	return nil
}
