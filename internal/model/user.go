package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:60;not null"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uk_users_email"`
	Phone        string    `gorm:"size:16;not null"`
	PasswordHash string    `gorm:"column:password_hash;size:255" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:buyer"`
	IsVerified   bool      `gorm:"column:is_verified;not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Contact is the public subset of a user that an unlock may reveal.
type Contact struct {
	Name  string
	Email string
	Phone string
}
