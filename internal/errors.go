package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail      ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidRole       ErrorCode = "INVALID_ROLE"
	ErrCodePasswordTooShort  ErrorCode = "PASSWORD_TOO_SHORT"
	ErrCodePasswordMismatch  ErrorCode = "PASSWORD_MISMATCH"
	ErrCodeFileMissing       ErrorCode = "FILE_MISSING"
	ErrCodeInvalidFileType   ErrorCode = "INVALID_FILE_TYPE"

	ErrCodeAdNotFound        ErrorCode = "AD_NOT_FOUND"
	ErrCodeAttributeNotFound ErrorCode = "AD_ATTRIBUTE_NOT_FOUND"
	ErrCodeGraphicNotFound   ErrorCode = "AD_GRAPHIC_NOT_FOUND"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeRoleNotAuthorized  ErrorCode = "ROLE_NOT_AUTHORIZED"
	ErrCodeNotResourceOwner   ErrorCode = "NOT_RESOURCE_OWNER"
	ErrCodeNoPermissionRule   ErrorCode = "NO_PERMISSION_RULE"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"

	ErrCodeUploadFailed    ErrorCode = "UPLOAD_FAILED"
	ErrCodeMediaHostFailed ErrorCode = "MEDIA_HOST_FAILED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrAdNotFound        = NewNotFoundError("Ad not found", ErrCodeAdNotFound)
	ErrAttributeNotFound = NewNotFoundError("Ad attribute not found", ErrCodeAttributeNotFound)
	ErrGraphicNotFound   = NewNotFoundError("Ad graphic not found", ErrCodeGraphicNotFound)
	ErrUserNotFound      = NewNotFoundError("User not found", ErrCodeUserNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrEmailTaken         = NewConflictError("Email is already registered", ErrCodeEmailTaken)

	ErrNotAuthenticated = NewForbiddenError("Access denied. User not authenticated.", ErrCodeNotAuthenticated)
	ErrRoleNotAllowed   = NewForbiddenError("Access denied. Role not authorized.", ErrCodeRoleNotAuthorized)
	ErrNotResourceOwner = NewForbiddenError("Access denied. Not the resource owner.", ErrCodeNotResourceOwner)
	ErrNoPermissionRule = NewForbiddenError("Access denied. No permission configuration found.", ErrCodeNoPermissionRule)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

// MarshalJSON intentionally drops Cause so internal details and stack traces
// can never reach a response body.
func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
