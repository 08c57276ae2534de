package models

import (
	"time"

	"gorm.io/gorm"
)

// Content limits
const (
	MaxPostLength    = 280
	MaxCommentLength = 200
)

// Category labels a post
type Category string

const (
	CategoryGeneral      Category = "general"
	CategoryAnnouncement Category = "announcement"
	CategoryQuestion     Category = "question"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryAnnouncement, CategoryQuestion:
		return true
	}
	return false
}

// Post is owned by its author. Deleting it decrements the author's posts_count.
type Post struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID  string    `gorm:"type:uuid;not null;index:idx_posts_author_created,priority:1" json:"author"`
	Content   string    `gorm:"size:280;not null" json:"content"`
	ImageURL  string    `gorm:"type:text" json:"image_url,omitempty"`
	Category  Category  `gorm:"size:20;not null;default:'general'" json:"category"`
	CreatedAt time.Time `gorm:"index;index:idx_posts_author_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.Category == "" {
		p.Category = CategoryGeneral
	}
	return nil
}
