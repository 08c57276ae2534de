package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordReset is a single-use reset token. Only the SHA-256 of the token is stored.
type PasswordReset struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	ProfileID string     `gorm:"type:uuid;not null;index" json:"profile_id"`
	TokenHash string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable reports whether the token can still be redeemed at now
func (r *PasswordReset) Usable(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}

func (r *PasswordReset) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
