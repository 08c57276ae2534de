// Package social maintains the follow graph and its denormalized counters.
package social

import (
	"context"
	"errors"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/notifications"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/telemetry"
)

// ListLimit caps follower and following lists
const ListLimit = 100

// FollowResult is returned from Follow and Unfollow. FollowingCount belongs to
// the viewer and FollowersCount to the target.
type FollowResult struct {
	Status         string                 `json:"status"`
	Actor          *models.ProfileSummary `json:"actor,omitempty"`
	FollowingCount int                    `json:"following_count"`
	FollowersCount int                    `json:"followers_count"`
}

// FollowStatus is the viewer's relationship to a target
type FollowStatus struct {
	IsFollowing    bool `json:"is_following"`
	FollowingCount int  `json:"following_count"`
	FollowersCount int  `json:"followers_count"`
}

// Edge is one entry of a follower or following list
type Edge struct {
	ProfileID string                 `json:"id"`
	Profile   *models.ProfileSummary `json:"profile,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Graph implements follow, unfollow and status
type Graph struct {
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
	emitter  notifications.Emitter
}

// NewGraph creates a follow graph manager
func NewGraph(follows repository.FollowRepository, profiles repository.ProfileRepository, emitter notifications.Emitter) *Graph {
	return &Graph{follows: follows, profiles: profiles, emitter: emitter}
}

// Follow creates the edge viewer -> target. Repeating it is a no-op success
// that neither duplicates the edge nor re-notifies.
func (g *Graph) Follow(ctx context.Context, viewerID, targetID string) (_ *FollowResult, err error) {
	ctx, span := telemetry.TraceSocial(ctx, "follow", viewerID, targetID)
	defer func() { telemetry.EndSpan(span, err) }()

	if viewerID == targetID {
		return nil, apierrors.Validation("Cannot follow yourself")
	}

	viewer, err := g.activeViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	target, err := g.profiles.GetByID(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !target.Active) {
		return nil, apierrors.NotFound("User unavailable")
	}
	if err != nil {
		return nil, apierrors.Upstream("Follow failed", err)
	}
	if target.Privacy == models.PrivacyPrivate {
		return nil, apierrors.Forbidden("Private account")
	}

	created, err := g.follows.Create(ctx, viewerID, targetID)
	if err != nil {
		return nil, apierrors.Upstream("Follow failed", err)
	}
	if created {
		metrics.App().FollowsTotal.Inc()
		g.emitter.EmitAsync(notifications.Event{
			RecipientID: targetID,
			ActorID:     viewerID,
			Type:        models.NotificationFollow,
		})
	}

	following, followers, err := g.recompute(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}

	summary := viewer.Summary()
	return &FollowResult{
		Status:         "followed",
		Actor:          &summary,
		FollowingCount: following,
		FollowersCount: followers,
	}, nil
}

// Unfollow removes the edge viewer -> target if present
func (g *Graph) Unfollow(ctx context.Context, viewerID, targetID string) (_ *FollowResult, err error) {
	ctx, span := telemetry.TraceSocial(ctx, "unfollow", viewerID, targetID)
	defer func() { telemetry.EndSpan(span, err) }()

	if viewerID == targetID {
		return nil, apierrors.Validation("Cannot unfollow yourself")
	}

	if _, err := g.activeViewer(ctx, viewerID); err != nil {
		return nil, err
	}

	if err := g.follows.Delete(ctx, viewerID, targetID); err != nil {
		return nil, apierrors.Upstream("Unfollow failed", err)
	}
	metrics.App().UnfollowsTotal.Inc()

	following, followers, err := g.recompute(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}

	return &FollowResult{
		Status:         "unfollowed",
		FollowingCount: following,
		FollowersCount: followers,
	}, nil
}

// Status reports whether viewer follows target, with live counts. For the
// viewer's own profile IsFollowing is always false.
func (g *Graph) Status(ctx context.Context, viewerID, targetID string) (*FollowStatus, error) {
	following, err := g.follows.CountFollowing(ctx, viewerID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load follow status", err)
	}

	followers, err := g.follows.CountFollowers(ctx, targetID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load follow status", err)
	}

	status := &FollowStatus{FollowingCount: int(following), FollowersCount: int(followers)}
	if viewerID == targetID {
		return status, nil
	}

	status.IsFollowing, err = g.follows.Exists(ctx, viewerID, targetID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load follow status", err)
	}
	return status, nil
}

// Followers lists who follows userID, newest first
func (g *Graph) Followers(ctx context.Context, userID string) ([]Edge, error) {
	edges, err := g.follows.ListFollowers(ctx, userID, ListLimit)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load followers", err)
	}
	return g.withProfiles(ctx, edges, func(f models.Follow) string { return f.FollowerID })
}

// Following lists who userID follows, newest first
func (g *Graph) Following(ctx context.Context, userID string) ([]Edge, error) {
	edges, err := g.follows.ListFollowing(ctx, userID, ListLimit)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load following", err)
	}
	return g.withProfiles(ctx, edges, func(f models.Follow) string { return f.FollowingID })
}

func (g *Graph) withProfiles(ctx context.Context, edges []models.Follow, other func(models.Follow) string) ([]Edge, error) {
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, other(e))
	}

	profiles, err := g.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profiles", err)
	}

	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		id := other(e)
		edge := Edge{ProfileID: id, CreatedAt: e.CreatedAt}
		if p, ok := profiles[id]; ok {
			summary := p.Summary()
			edge.Profile = &summary
		}
		out = append(out, edge)
	}
	return out, nil
}

func (g *Graph) activeViewer(ctx context.Context, viewerID string) (*models.Profile, error) {
	viewer, err := g.profiles.GetByID(ctx, viewerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Unauthorized("Profile not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}
	if !viewer.Active {
		return nil, apierrors.Forbidden("Account deactivated")
	}
	return viewer, nil
}

// recompute re-counts both parties from edges. It runs without a transaction;
// a concurrent change is corrected by the next recompute.
func (g *Graph) recompute(ctx context.Context, viewerID, targetID string) (following, followers int, err error) {
	if _, following, err = g.follows.RecomputeCounts(ctx, viewerID); err != nil {
		return 0, 0, apierrors.Upstream("Failed to update counts", err)
	}
	if followers, _, err = g.follows.RecomputeCounts(ctx, targetID); err != nil {
		return 0, 0, apierrors.Upstream("Failed to update counts", err)
	}
	logger.DebugWithFields("Follow counts recomputed",
		logger.WithUserID(viewerID),
		logger.WithTargetID(targetID),
	)
	return following, followers, nil
}
