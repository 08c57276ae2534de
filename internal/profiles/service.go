// Package profiles implements the public directory, profile reads and
// self-service profile edits.
package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/util"
	"github.com/zfogg/murmur/internal/visibility"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50

	MaxBioLength      = 160
	MaxWebsiteLength  = 200
	MaxLocationLength = 120
)

// DirectoryEntry is one row of GET /users
type DirectoryEntry struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url"`
	Bio       string         `json:"bio"`
	Privacy   models.Privacy `json:"privacy"`
}

// PublicProfile is a profile as other users see it
type PublicProfile struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Bio            string         `json:"bio"`
	AvatarURL      string         `json:"avatar_url"`
	Website        string         `json:"website"`
	Location       string         `json:"location"`
	Privacy        models.Privacy `json:"privacy"`
	FollowersCount int            `json:"followers_count"`
	FollowingCount int            `json:"following_count"`
	PostsCount     int            `json:"posts_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewPublicProfile strips account-only fields from p
func NewPublicProfile(p *models.Profile) *PublicProfile {
	return &PublicProfile{
		ID:             p.ID,
		Username:       p.Username,
		Bio:            p.Bio,
		AvatarURL:      p.AvatarURL,
		Website:        p.Website,
		Location:       p.Location,
		Privacy:        p.Privacy,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
		PostsCount:     p.PostsCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// UpdateInput is the body of PATCH /users/me. Nil fields are left alone.
type UpdateInput struct {
	Bio       *string `json:"bio"`
	Website   *string `json:"website"`
	Location  *string `json:"location"`
	Privacy   *string `json:"privacy"`
	AvatarURL *string `json:"avatar_url"`
}

// Indexer receives profiles whose searchable fields changed
type Indexer interface {
	IndexProfile(ctx context.Context, profile *models.Profile) error
}

// Service implements profile reads and edits
type Service struct {
	profiles repository.ProfileRepository
	resolver *visibility.Resolver
	index    Indexer
}

// NewService creates a profile service. index may be nil.
func NewService(profiles repository.ProfileRepository, resolver *visibility.Resolver, index Indexer) *Service {
	return &Service{profiles: profiles, resolver: resolver, index: index}
}

// Directory lists active profiles newest first, optionally filtered by username
func (s *Service) Directory(ctx context.Context, query string, page util.Page) ([]DirectoryEntry, int64, error) {
	rows, total, err := s.profiles.SearchActive(ctx, strings.TrimSpace(query), page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, apierrors.Upstream("Failed to list users", err)
	}

	entries := make([]DirectoryEntry, 0, len(rows))
	for _, p := range rows {
		entries = append(entries, DirectoryEntry{
			ID:        p.ID,
			Username:  p.Username,
			AvatarURL: p.AvatarURL,
			Bio:       p.Bio,
			Privacy:   p.Privacy,
		})
	}
	return entries, total, nil
}

// Me loads the caller's own profile, including account-only fields
func (s *Service) Me(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Unauthorized("Profile not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}
	return profile, nil
}

// Get loads another profile subject to the visibility rules
func (s *Service) Get(ctx context.Context, viewerID, targetID string) (*PublicProfile, error) {
	target, err := s.profiles.GetByID(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}

	decision, err := s.resolver.CanView(ctx, viewerID, target)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return NewPublicProfile(target), nil
}

// Update applies self-service edits and returns the refreshed profile
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*models.Profile, error) {
	fields, err := in.fields()
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Update(ctx, userID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.Unauthorized("Profile not found")
		}
		return nil, apierrors.Upstream("Failed to update profile", err)
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}

	if s.index != nil {
		if err := s.index.IndexProfile(ctx, profile); err != nil {
			logger.WarnWithFields("Failed to index profile", err, logger.WithUserID(userID))
		}
	}
	return profile, nil
}

// fields validates the input in field order and returns the column updates
func (in UpdateInput) fields() (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if in.Bio != nil {
		if util.CharLen(*in.Bio) > MaxBioLength {
			return nil, apierrors.Validation("Bio too long")
		}
		fields["bio"] = *in.Bio
	}

	if in.Website != nil {
		website := strings.TrimSpace(*in.Website)
		if website != "" && !util.IsValidWebsite(website) {
			return nil, apierrors.Validation("Website must start with http(s)://")
		}
		if util.CharLen(website) > MaxWebsiteLength {
			return nil, apierrors.Validation("Website too long")
		}
		fields["website"] = website
	}

	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if util.CharLen(location) > MaxLocationLength {
			return nil, apierrors.Validation("Location too long")
		}
		fields["location"] = location
	}

	if in.Privacy != nil {
		privacy := models.Privacy(*in.Privacy)
		if !privacy.Valid() {
			return nil, apierrors.Validation("Invalid privacy")
		}
		fields["privacy"] = privacy
	}

	if in.AvatarURL != nil {
		avatar := strings.TrimSpace(*in.AvatarURL)
		if avatar != "" && !util.IsValidWebsite(avatar) {
			return nil, apierrors.Validation("Invalid avatar_url")
		}
		fields["avatar_url"] = avatar
	}

	if len(fields) == 0 {
		return nil, apierrors.Validation("No fields to update")
	}
	return fields, nil
}
