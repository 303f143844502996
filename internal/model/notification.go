package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NotificationTypeContactUnlocked = "contact_unlocked"

type Notification struct {
	ID         string     `gorm:"primaryKey;size:36"`
	UserID     string     `gorm:"column:user_id;size:36;index;not null"`
	Type       string     `gorm:"column:type;size:64;not null"`
	Title      string     `gorm:"column:title;size:255"`
	Body       string     `gorm:"column:body;type:text"`
	PropertyID *string    `gorm:"column:property_id;size:36;index"`
	UnlockID   *string    `gorm:"column:unlock_id;size:36"`
	ReadAt     *time.Time `gorm:"column:read_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
