package adgraphic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/core/events"
)

type Repository interface {
	Create(ctx context.Context, g *AdGraphic) (*AdGraphic, error)
	GetByID(ctx context.Context, graphicID int64) (*AdGraphic, error)
	Update(ctx context.Context, g *AdGraphic) (*AdGraphic, error)
	UpdateFileURL(ctx context.Context, graphicID int64, fileURL string) error
	Delete(ctx context.Context, graphicID int64) error
	ResolveOwner(ctx context.Context, graphicID int64) (int64, error)
}

// EventPublisher decouples the upload request from the media pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      Repository
	bus       EventPublisher
	uploadDir string
	logger    *slog.Logger
}

func NewService(repo Repository, bus EventPublisher, uploadDir string, lg *slog.Logger) *Service {
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		repo:      repo,
		bus:       bus,
		uploadDir: uploadDir,
		logger:    lg,
	}
}

// Upload stores the file under a timestamped name, persists the graphic row
// pointing at the local path, then announces it for async compression and
// hosting.
func (s *Service) Upload(ctx context.Context, userID int64, fileName, contentType string, size int64, src io.Reader) (*AdGraphic, error) {
	if fileName == "" {
		return nil, internal.NewValidationError("file is required", internal.ErrCodeFileMissing)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, internal.NewInternalError("failed to prepare upload directory", err)
	}

	storedName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fileName))
	storedPath := filepath.Join(s.uploadDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, internal.NewInternalError("failed to store uploaded file", err)
	}
	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(storedPath)
		return nil, internal.NewInternalError("failed to store uploaded file", err)
	}
	if size <= 0 {
		size = written
	}

	created, err := s.repo.Create(ctx, &AdGraphic{
		UserID:     userID,
		FileName:   fileName,
		FileType:   contentType,
		FileSize:   size,
		FileURL:    storedPath,
		UploadDate: time.Now(),
	})
	if err != nil {
		os.Remove(storedPath)
		return nil, internal.NewInternalError("failed to create ad graphic", err)
	}

	// async handlers pick this up, the upload response does not wait; a
	// dropped announcement leaves file_url on the local path, so it must
	// at least be visible in the logs
	if err := s.bus.Publish(ctx, events.NewGraphicUploadedEvent(created.ID, storedPath, contentType)); err != nil {
		s.logger.Error("failed to announce graphic upload",
			"graphic_id", created.ID, "file_path", storedPath, "error", err)
	}

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, graphicID int64) (*AdGraphic, error) {
	return s.repo.GetByID(ctx, graphicID)
}

// Rename updates the display file name. The stored file and URL stay put.
func (s *Service) Rename(ctx context.Context, graphicID int64, fileName string) (*AdGraphic, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, internal.NewValidationFieldError("file_name", "file_name is required", internal.ErrCodeValidationFailed)
	}

	current, err := s.repo.GetByID(ctx, graphicID)
	if err != nil {
		return nil, err
	}

	current.FileName = fileName
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return nil, internal.NewInternalError("failed to update ad graphic", err)
	}
	return updated, nil
}

// SetHostedURL is called by the media pipeline when hosting completes.
func (s *Service) SetHostedURL(ctx context.Context, graphicID int64, fileURL string) error {
	if err := s.repo.UpdateFileURL(ctx, graphicID, fileURL); err != nil {
		return internal.NewInternalError("failed to update file url", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, graphicID int64) error {
	current, err := s.repo.GetByID(ctx, graphicID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, graphicID); err != nil {
		return internal.NewInternalError("failed to delete ad graphic", err)
	}

	// best effort removal of the local file, hosted copies stay
	if current.FileURL != "" && !strings.HasPrefix(current.FileURL, "http") {
		os.Remove(current.FileURL)
	}
	return nil
}
