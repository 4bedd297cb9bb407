package adgraphic

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/auth"
	"github.com/frahmantamala/ad-management/internal/transport"
	"github.com/frahmantamala/ad-management/pkg/logger"
	"github.com/go-chi/chi"
)

// maxUploadBytes caps a single multipart upload at 512 MiB.
const maxUploadBytes = 512 << 20

type ServiceAPI interface {
	Upload(ctx context.Context, userID int64, fileName, contentType string, size int64, src io.Reader) (*AdGraphic, error)
	GetByID(ctx context.Context, graphicID int64) (*AdGraphic, error)
	Rename(ctx context.Context, graphicID int64, fileName string) (*AdGraphic, error)
	Delete(ctx context.Context, graphicID int64) error
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

// Upload handles POST /ad-graphics with a multipart "file" part.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNotAuthenticated)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteAppError(w, internal.NewValidationError("file is required", internal.ErrCodeFileMissing))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	created, err := h.Service.Upload(r.Context(), caller.ID, header.Filename, contentType, header.Size, file)
	if err != nil {
		h.Logger.Error("graphic upload failed", "user_id", caller.ID, "file", header.Filename, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Ad graphic uploaded successfully", created)
}

// Get handles GET /ad-graphics/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	graphicID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid graphic id")
		return
	}

	found, err := h.Service.GetByID(r.Context(), graphicID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad graphic retrieved successfully", found)
}

// Update handles PUT /ad-graphics/{id}: only the display name changes.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	graphicID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid graphic id")
		return
	}

	var dto struct {
		FileName string `json:"file_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Rename(r.Context(), graphicID, dto.FileName)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad graphic updated successfully", updated)
}

// Delete handles DELETE /ad-graphics/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	graphicID, err := idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid graphic id")
		return
	}

	if err := h.Service.Delete(r.Context(), graphicID); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Ad graphic deleted successfully", nil)
}
