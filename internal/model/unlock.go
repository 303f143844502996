package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unlock grants a buyer access to a seller's contact for one property until
// ExpiresAt. At most one row exists per (buyer, property).
type Unlock struct {
	ID         string    `gorm:"primaryKey;size:36"`
	BuyerID    string    `gorm:"column:buyer_id;size:36;not null;uniqueIndex:uk_unlocks_buyer_property,priority:1"`
	PropertyID string    `gorm:"column:property_id;size:36;not null;uniqueIndex:uk_unlocks_buyer_property,priority:2"`
	SellerID   string    `gorm:"column:seller_id;size:36;not null;index"`
	PaymentID  string    `gorm:"column:payment_id;size:36;not null"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Unlock) TableName() string {
	return "unlocks"
}

func (u *Unlock) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ActiveAt reports whether the grant is still valid at t. A grant expiring
// exactly at t is already expired.
func (u *Unlock) ActiveAt(t time.Time) bool {
	return u.ExpiresAt.After(t)
}
