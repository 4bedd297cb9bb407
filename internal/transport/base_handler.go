package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/pkg/logger"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes a success envelope.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.writeJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteError writes a failure envelope with only a message, no error detail.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.writeJSON(w, status, Response{
		Success: false,
		Message: message,
	})
}

// WriteAppError maps an error to the envelope. AppErrors keep their status and
// structured detail; anything else becomes a generic 500 so internal causes
// never leak into the body.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("internal error", "code", appErr.Code, "error", appErr.Error())
			h.writeJSON(w, appErr.StatusCode, Response{
				Success: false,
				Message: "Internal Server Error",
			})
			return
		}
		h.writeJSON(w, appErr.StatusCode, Response{
			Success: false,
			Message: appErr.Message,
			Error:   appErr,
		})
		return
	}

	h.Logger.Error("unhandled error", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, Response{
		Success: false,
		Message: "Internal Server Error",
	})
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
