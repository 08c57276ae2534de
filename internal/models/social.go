package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow is a directed edge: FollowerID receives FollowingID's posts.
// The composite primary key makes the pair unique.
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;type:uuid" json:"follower"`
	FollowingID string    `gorm:"primaryKey;type:uuid;index" json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// Like is at most one per (user, post)
type Like struct {
	UserID    string    `gorm:"primaryKey;type:uuid" json:"user_id"`
	PostID    string    `gorm:"primaryKey;type:uuid;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment on a post. Deletable by its author or an admin.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID  string    `gorm:"type:uuid;not null;index" json:"author"`
	Content   string    `gorm:"size:200;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}
