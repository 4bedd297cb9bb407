package adgraphic

import (
	"time"

	graphicDatamodel "github.com/frahmantamala/ad-management/internal/core/datamodel/adgraphic"
)

// AdGraphic is an uploaded image or video owned by the uploading user.
// FileURL starts as the local upload path and is replaced with the hosted
// URL once the media pipeline finishes.
type AdGraphic struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	FileURL    string    `json:"file_url"`
	UploadDate time.Time `json:"upload_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToDataModel(g *AdGraphic) *graphicDatamodel.AdGraphic {
	return &graphicDatamodel.AdGraphic{
		ID:         g.ID,
		UserID:     g.UserID,
		FileName:   g.FileName,
		FileType:   g.FileType,
		FileSize:   g.FileSize,
		FileURL:    g.FileURL,
		UploadDate: g.UploadDate,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

func FromDataModel(m *graphicDatamodel.AdGraphic) *AdGraphic {
	return &AdGraphic{
		ID:         m.ID,
		UserID:     m.UserID,
		FileName:   m.FileName,
		FileType:   m.FileType,
		FileSize:   m.FileSize,
		FileURL:    m.FileURL,
		UploadDate: m.UploadDate,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
