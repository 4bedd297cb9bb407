package adattribute

import "time"

type AdAttribute struct {
	ID        int64     `gorm:"primaryKey"`
	AdID      int64     `gorm:"column:ad_id;not null;index"`
	Key       string    `gorm:"column:key;not null"`
	Value     string    `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (AdAttribute) TableName() string {
	return "ad_attributes"
}
