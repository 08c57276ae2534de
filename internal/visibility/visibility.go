// Package visibility decides whether a viewer may read a profile and its posts.
package visibility

import (
	"context"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/models"
)

// Decision is the outcome of a visibility check
type Decision int

const (
	Allowed Decision = iota
	// NotFound hides deactivated accounts entirely
	NotFound
	// Private is returned for private profiles viewed by anyone but the owner
	Private
	// Restricted is returned for followers_only profiles without a follow edge
	Restricted
)

// Allowed reports whether the decision grants read access
func (d Decision) Allowed() bool {
	return d == Allowed
}

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NotFound:
		return "not_found"
	case Private:
		return "private"
	case Restricted:
		return "restricted"
	}
	return "unknown"
}

// Err returns the client-facing error for a denied profile read, or nil
func (d Decision) Err() error {
	switch d {
	case Allowed:
		return nil
	case Private:
		return apierrors.Forbidden("Private profile")
	case Restricted:
		return apierrors.Forbidden("Restricted profile")
	}
	return apierrors.NotFound("Not found")
}

// Resolve applies the visibility rules. viewerID may be empty for anonymous
// viewers; follows reports whether the edge viewer -> target exists.
func Resolve(viewerID string, target *models.Profile, follows bool) Decision {
	if target == nil || !target.Active {
		return NotFound
	}

	isOwner := viewerID != "" && viewerID == target.ID
	if isOwner {
		return Allowed
	}

	switch target.Privacy {
	case models.PrivacyPrivate:
		return Private
	case models.PrivacyFollowersOnly:
		if viewerID != "" && follows {
			return Allowed
		}
		return Restricted
	}
	return Allowed
}

// FollowChecker reports whether a follow edge exists
type FollowChecker interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
}

// ProfileLoader loads authors in bulk
type ProfileLoader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error)
}

// Resolver evaluates visibility against live follow edges
type Resolver struct {
	follows  FollowChecker
	profiles ProfileLoader
}

// NewResolver creates a new resolver
func NewResolver(follows FollowChecker, profiles ProfileLoader) *Resolver {
	return &Resolver{follows: follows, profiles: profiles}
}

// CanView looks up the follow edge only when the rules need it
func (r *Resolver) CanView(ctx context.Context, viewerID string, target *models.Profile) (Decision, error) {
	decision := Resolve(viewerID, target, false)
	if decision != Restricted || viewerID == "" {
		return decision, nil
	}

	follows, err := r.follows.Exists(ctx, viewerID, target.ID)
	if err != nil {
		return decision, err
	}
	return Resolve(viewerID, target, follows), nil
}

// CanViewPosts is CanView for content: owners always see their own posts,
// even while deactivated.
func (r *Resolver) CanViewPosts(ctx context.Context, viewerID string, author *models.Profile) (Decision, error) {
	if author != nil && viewerID != "" && viewerID == author.ID {
		return Allowed, nil
	}
	return r.CanView(ctx, viewerID, author)
}

// FilterPosts drops posts whose author the viewer may not see. Each distinct
// author is evaluated once; hidden posts are dropped silently.
func (r *Resolver) FilterPosts(ctx context.Context, viewerID string, posts []models.Post) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := r.profiles.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	visible := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		decision, err := r.CanViewPosts(ctx, viewerID, authors[id])
		if err != nil {
			return nil, err
		}
		visible[id] = decision.Allowed()
	}

	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if visible[p.AuthorID] {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
