package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Privacy controls who may read a profile and its posts
type Privacy string

const (
	PrivacyPublic        Privacy = "public"
	PrivacyPrivate       Privacy = "private"
	PrivacyFollowersOnly Privacy = "followers_only"
)

// Valid reports whether p is one of the known privacy modes
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyFollowersOnly:
		return true
	}
	return false
}

// Profile is an account. The ID doubles as the account id.
type Profile struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string  `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"type:text;not null" json:"-"`
	Bio          string  `gorm:"size:160" json:"bio"`
	Website      string  `gorm:"size:200" json:"website"`
	Location     string  `gorm:"size:120" json:"location"`
	AvatarURL    string  `gorm:"type:text" json:"avatar_url"`
	Privacy      Privacy `gorm:"size:20;not null;default:'public'" json:"privacy"`

	// Active and IsAdmin are only changed through the admin endpoints.
	// Active has no column default; callers set it explicitly on create.
	Active  bool `gorm:"not null;index" json:"active"`
	IsAdmin bool `gorm:"not null" json:"is_admin"`

	// Denormalized counters, recomputed from source rows on every mutation
	PostsCount     int `gorm:"not null;default:0" json:"posts_count"`
	FollowersCount int `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int `gorm:"not null;default:0" json:"following_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// ProfileSummary is the compact author/actor shape embedded in other responses
type ProfileSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Summary returns the compact representation of p
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Username: p.Username, AvatarURL: p.AvatarURL}
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.Privacy == "" {
		p.Privacy = PrivacyPublic
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}
