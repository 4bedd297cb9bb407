package events

import (
	"time"

	"github.com/google/uuid"
)

const TypeGraphicUploaded = "graphic.uploaded"

// NewGraphicUploadedEvent is published after an ad graphic row is persisted,
// so the media pipeline can compress and re-host the file out of band.
func NewGraphicUploadedEvent(graphicID int64, filePath, fileType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TypeGraphicUploaded,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"graphic_id": graphicID,
			"file_path":  filePath,
			"file_type":  fileType,
		},
	}
}
