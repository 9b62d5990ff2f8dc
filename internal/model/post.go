package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups posts. UserID records who created it.
type Category struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	UserID    *uuid.UUID `json:"userId,omitempty" gorm:"type:char(36);index"`
	User      *User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Post is a blog entry owned by a user and filed under a category.
type Post struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey;index:idx_posts_created,priority:2;index:idx_posts_updated,priority:2"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	Tags       []string  `json:"tags" gorm:"type:text;serializer:json"`
	CategoryID uuid.UUID `json:"categoryId" gorm:"type:char(36);not null;index"`
	UserID     uuid.UUID `json:"userId" gorm:"type:char(36);not null;index"`
	Category   Category  `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	User       User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index:idx_posts_created,priority:1"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"index:idx_posts_updated,priority:1"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
