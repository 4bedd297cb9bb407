package session

import "time"

// Session is one authenticated login instance. Logout flips Valid to false;
// rows are never deleted or resurrected.
type Session struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	UserAgent string    `gorm:"column:user_agent"`
	Valid     bool      `gorm:"column:valid;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Session) TableName() string {
	return "sessions"
}
