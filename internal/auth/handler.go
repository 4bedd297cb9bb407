package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/transport"
	"github.com/frahmantamala/ad-management/pkg/logger"
)

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

// Login handles POST /sessions.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Login(r.Context(), dto, r.UserAgent())
	if err != nil {
		h.Logger.Warn("login failed", "email", dto.Email, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Session created successfully", tokens)
}

// ListSessions handles GET /sessions for the authenticated caller.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNotAuthenticated)
		return
	}

	sessions, err := h.Service.Sessions(r.Context(), caller.ID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Sessions retrieved successfully", sessions)
}

// Logout handles DELETE /sessions: revokes the session behind the caller's
// current access token and answers with nulled tokens.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNotAuthenticated)
		return
	}

	if err := h.Service.Logout(r.Context(), sessionID); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Session deleted successfully", map[string]interface{}{
		"access_token":  nil,
		"refresh_token": nil,
	})
}

// AuthMiddleware authenticates the bearer token and stores the caller in the
// request context. Missing or bad tokens are a 403, matching the engine's
// treatment of unauthenticated callers.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.ErrNotAuthenticated)
			return
		}

		user, sessionID, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.Logger.Warn("token authentication failed", "error", err)
			h.WriteAppError(w, internal.ErrNotAuthenticated)
			return
		}

		ctx := ContextWithUser(r.Context(), user, sessionID)
		ctx = logger.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
