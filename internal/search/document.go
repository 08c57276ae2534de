package search

import (
	"strings"
	"time"

	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/models"
)

// PostSearchDoc is the indexed form of a post
type PostSearchDoc struct {
	ID        string   `json:"id"`
	AuthorID  string   `json:"author_id"`
	Content   string   `json:"content"`
	Hashtags  []string `json:"hashtags"`
	Category  string   `json:"category"`
	CreatedAt string   `json:"created_at"`
}

// ProfileSearchDoc is the indexed form of a profile
type ProfileSearchDoc struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Privacy   string `json:"privacy"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// PostToSearchDoc converts a post for indexing
func PostToSearchDoc(post *models.Post) PostSearchDoc {
	return PostSearchDoc{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		Hashtags:  feed.ExtractHashtags(post.Content),
		Category:  string(post.Category),
		CreatedAt: post.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ProfileToSearchDoc converts a profile for indexing
func ProfileToSearchDoc(profile *models.Profile) ProfileSearchDoc {
	return ProfileSearchDoc{
		ID:        profile.ID,
		Username:  profile.Username,
		Bio:       profile.Bio,
		Privacy:   string(profile.Privacy),
		Active:    profile.Active,
		CreatedAt: profile.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// normalizeTag turns "Go" or "#Go" into the stored hashtag form "#go"
func normalizeTag(q string) string {
	return "#" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(q), "#"))
}
