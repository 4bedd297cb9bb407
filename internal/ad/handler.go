package ad

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/auth"
	"github.com/frahmantamala/ad-management/internal/transport"
	"github.com/frahmantamala/ad-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, userID int64, dto CreateDTO) (*Ad, error)
	GetByID(ctx context.Context, adID int64) (*Ad, error)
	List(ctx context.Context) ([]Ad, error)
	Update(ctx context.Context, adID int64, dto UpdateDTO) (*Ad, error)
	Delete(ctx context.Context, adID int64) error
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

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Create handles POST /ads.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNotAuthenticated)
		return
	}

	var dto CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), caller.ID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Ad created successfully", created)
}

// List handles GET /ads.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ads, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ads retrieved successfully", ads)
}

// Get handles GET /ads/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	found, err := h.Service.GetByID(r.Context(), adID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad retrieved successfully", found)
}

// Update handles PUT /ads/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), adID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad updated successfully", updated)
}

// Delete handles DELETE /ads/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	if err := h.Service.Delete(r.Context(), adID); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad deleted successfully", nil)
}
