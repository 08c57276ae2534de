package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType is the event that produced a notification
type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Message returns the text stored alongside a notification of this type
func (t NotificationType) Message() string {
	switch t {
	case NotificationFollow:
		return "started following you"
	case NotificationLike:
		return "liked your post"
	case NotificationComment:
		return "commented on your post"
	}
	return ""
}

// Notification is created as a side effect of follow, like and comment actions
// when the actor is not the recipient.
type Notification struct {
	ID          string           `gorm:"primaryKey;type:uuid" json:"id"`
	RecipientID string           `gorm:"type:uuid;not null;index:idx_notifications_recipient_created,priority:1" json:"recipient"`
	ActorID     string           `gorm:"type:uuid;not null" json:"actor"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	PostID      *string          `gorm:"type:uuid;index" json:"post_id,omitempty"`
	CommentID   *string          `gorm:"type:uuid" json:"comment_id,omitempty"`
	IsRead      bool             `gorm:"not null;default:false" json:"is_read"`
	Message     string           `gorm:"type:text" json:"message"`
	CreatedAt   time.Time        `gorm:"index:idx_notifications_recipient_created,priority:2,sort:desc" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
