package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/auth"
	"github.com/frahmantamala/ad-management/internal/transport"
	"github.com/frahmantamala/ad-management/pkg/logger"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("registration failed", "email", dto.Email, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "User registered successfully", created)
}

// GetCurrentUser handles GET /users/me.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNotAuthenticated)
		return
	}

	u, err := h.Service.GetByID(r.Context(), caller.ID)
	if err != nil {
		h.Logger.Error("failed to load current user", "user_id", caller.ID, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "User retrieved successfully", u)
}
