package adattribute

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/ad-management/internal/transport"
	"github.com/frahmantamala/ad-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateDTO) (*AdAttribute, error)
	GetByID(ctx context.Context, attributeID int64) (*AdAttribute, error)
	ListByAd(ctx context.Context, adID int64) ([]AdAttribute, error)
	Update(ctx context.Context, attributeID int64, dto UpdateDTO) (*AdAttribute, error)
	Delete(ctx context.Context, attributeID int64) error
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

// Create handles POST /ad-attributes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Ad attribute created successfully", created)
}

// Get handles GET /ad-attributes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	attributeID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attribute id")
		return
	}

	found, err := h.Service.GetByID(r.Context(), attributeID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad attribute retrieved successfully", found)
}

// ListByAd handles GET /ad-attributes/by-ad/{id}.
func (h *Handler) ListByAd(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	attrs, err := h.Service.ListByAd(r.Context(), adID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad attributes retrieved successfully", attrs)
}

// Update handles PUT /ad-attributes/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	attributeID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attribute id")
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), attributeID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad attribute updated successfully", updated)
}

// Delete handles DELETE /ad-attributes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	attributeID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attribute id")
		return
	}

	if err := h.Service.Delete(r.Context(), attributeID); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad attribute deleted successfully", nil)
}
