package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSettings holds per-user preferences stored as JSON.
type UserSettings struct {
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

// User represents an account that can sign in.
type User struct {
	ID         uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	FirstName  string        `json:"firstName" gorm:"size:255;not null"`
	LastName   *string       `json:"lastName,omitempty" gorm:"size:255"`
	Email      string        `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password   string        `json:"-" gorm:"size:255;not null"` // bcrypt hash, never exposed
	SystemRole Role          `json:"systemRole" gorm:"size:20;not null;default:'user'"`
	Status     Status        `json:"status" gorm:"size:20;not null;default:'active';index"`
	Settings   *UserSettings `json:"settings,omitempty" gorm:"type:text;serializer:json"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RequestUser is the sanitized projection of a User attached to authenticated requests.
type RequestUser struct {
	ID         uuid.UUID     `json:"id"`
	Email      string        `json:"email"`
	FirstName  string        `json:"firstName"`
	LastName   *string       `json:"lastName,omitempty"`
	SystemRole Role          `json:"systemRole"`
	Status     Status        `json:"status"`
	Settings   *UserSettings `json:"settings,omitempty"`
}

// ToRequestUser projects u without its password hash.
func (u *User) ToRequestUser() *RequestUser {
	return &RequestUser{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		SystemRole: u.SystemRole,
		Status:     u.Status,
		Settings:   u.Settings,
	}
}
