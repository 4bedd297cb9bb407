package adgraphic

import "time"

type AdGraphic struct {
	ID         int64     `gorm:"primaryKey"`
	UserID     int64     `gorm:"column:user_id;not null;index"`
	FileName   string    `gorm:"column:file_name;not null"`
	FileType   string    `gorm:"column:file_type;not null"`
	FileSize   int64     `gorm:"column:file_size;not null"`
	FileURL    string    `gorm:"column:file_url;not null"`
	UploadDate time.Time `gorm:"column:upload_date;default:now()"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:now()"`
}

func (AdGraphic) TableName() string {
	return "ad_graphics"
}
