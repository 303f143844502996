package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyImage struct {
	ID         string    `gorm:"primaryKey;size:36"`
	PropertyID string    `gorm:"column:property_id;size:36;not null;index:idx_property_images_property_id"`
	ObjectPath string    `gorm:"column:object_path;size:512"`
	ImageURL   string    `gorm:"column:image_url;size:1024;not null"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (PropertyImage) TableName() string {
	return "property_images"
}

func (i *PropertyImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
