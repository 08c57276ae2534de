// Package admin implements moderation: account flags, content removal,
// site stats and the audit trail.
package admin

import (
	"context"
	"errors"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/util"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Audit target types
const (
	TargetUser    = "user"
	TargetPost    = "post"
	TargetComment = "comment"
)

// Moderator removes content regardless of ownership
type Moderator interface {
	Remove(ctx context.Context, postID string) (*models.Post, error)
	RemoveComment(ctx context.Context, commentID string) (*models.Comment, error)
}

// Stats is the dashboard summary
type Stats struct {
	TotalUsers  int64 `json:"total_users"`
	TotalPosts  int64 `json:"total_posts"`
	ActiveToday int64 `json:"active_today"`
}

// UserFlags is the moderation-relevant slice of a profile
type UserFlags struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
	Active  bool   `json:"active"`
}

// UpdateUserInput is the body of PATCH /admin/users/:id
type UpdateUserInput struct {
	IsAdmin *bool `json:"is_admin"`
	Active  *bool `json:"active"`
}

// Service implements the admin operations. Callers are already gated by
// middleware.RequireAdmin.
type Service struct {
	profiles  repository.ProfileRepository
	posts     repository.PostRepository
	logs      repository.AdminLogRepository
	moderator Moderator
	now       func() time.Time
}

// NewService creates an admin service
func NewService(profiles repository.ProfileRepository, posts repository.PostRepository, logs repository.AdminLogRepository, moderator Moderator) *Service {
	return &Service{
		profiles:  profiles,
		posts:     posts,
		logs:      logs,
		moderator: moderator,
		now:       time.Now,
	}
}

// Stats counts users, posts and profiles touched since midnight UTC
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.profiles.Count(ctx)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load stats", err)
	}
	posts, err := s.posts.Count(ctx)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load stats", err)
	}

	midnight := s.now().UTC().Truncate(24 * time.Hour)
	active, err := s.profiles.CountUpdatedSince(ctx, midnight)
	if err != nil {
		// The stat is approximate; a failed count reads as zero
		logger.WarnWithFields("Failed to count active profiles", err)
		active = 0
	}

	return &Stats{TotalUsers: users, TotalPosts: posts, ActiveToday: active}, nil
}

// Users lists profiles newest first, optionally filtered by username substring
func (s *Service) Users(ctx context.Context, search string, page util.Page) ([]models.Profile, int64, error) {
	users, total, err := s.profiles.Search(ctx, search, page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, apierrors.Upstream("Failed to list users", err)
	}
	return users, total, nil
}

// User loads one profile
func (s *Service) User(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load user", err)
	}
	return profile, nil
}

// UpdateUser sets is_admin and/or active on another account
func (s *Service) UpdateUser(ctx context.Context, adminID, targetID string, in UpdateUserInput) (*UserFlags, error) {
	if adminID == targetID {
		return nil, apierrors.Validation("Cannot modify own admin status")
	}

	fields := make(map[string]interface{})
	meta := models.Meta{}
	if in.IsAdmin != nil {
		fields["is_admin"] = *in.IsAdmin
		meta["is_admin"] = *in.IsAdmin
	}
	if in.Active != nil {
		fields["active"] = *in.Active
		meta["active"] = *in.Active
	}
	if len(fields) == 0 {
		return nil, apierrors.Validation("No fields")
	}

	flags, err := s.apply(ctx, targetID, fields)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, adminID, models.AdminActionUpdateUser, TargetUser, targetID, meta)
	return flags, nil
}

// SetActive deactivates another account, or reactivates it when active is true
func (s *Service) SetActive(ctx context.Context, adminID, targetID string, active bool) (*UserFlags, error) {
	if adminID == targetID {
		return nil, apierrors.Validation("Cannot modify self")
	}

	flags, err := s.apply(ctx, targetID, map[string]interface{}{"active": active})
	if err != nil {
		return nil, err
	}

	action := models.AdminActionDeactivateUser
	if active {
		action = models.AdminActionReactivateUser
	}
	s.audit(ctx, adminID, action, TargetUser, targetID, nil)
	return flags, nil
}

// Posts lists every post, newest first, optionally for one author
func (s *Service) Posts(ctx context.Context, authorID string, page util.Page) ([]models.Post, int64, error) {
	posts, total, err := s.posts.ListAll(ctx, authorID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, apierrors.Upstream("Failed to list posts", err)
	}
	return posts, total, nil
}

// DeletePost removes any post and decrements its author's posts_count
func (s *Service) DeletePost(ctx context.Context, adminID, postID string) error {
	if _, err := s.moderator.Remove(ctx, postID); err != nil {
		return err
	}
	s.audit(ctx, adminID, models.AdminActionDeletePost, TargetPost, postID, nil)
	return nil
}

// DeleteComment removes any comment
func (s *Service) DeleteComment(ctx context.Context, adminID, commentID string) error {
	if _, err := s.moderator.RemoveComment(ctx, commentID); err != nil {
		return err
	}
	s.audit(ctx, adminID, models.AdminActionDeleteComment, TargetComment, commentID, nil)
	return nil
}

// Logs pages through the audit trail, newest first
func (s *Service) Logs(ctx context.Context, page util.Page) ([]models.AdminLog, int64, error) {
	entries, total, err := s.logs.List(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, apierrors.Upstream("Failed to load admin logs", err)
	}
	return entries, total, nil
}

func (s *Service) apply(ctx context.Context, targetID string, fields map[string]interface{}) (*UserFlags, error) {
	if err := s.profiles.Update(ctx, targetID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NotFound("Not found")
		}
		return nil, apierrors.Upstream("Failed to update user", err)
	}

	profile, err := s.profiles.GetByID(ctx, targetID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load user", err)
	}
	return &UserFlags{ID: profile.ID, IsAdmin: profile.IsAdmin, Active: profile.Active}, nil
}

// audit appends to the trail. Failures are logged and never undo the action.
func (s *Service) audit(ctx context.Context, adminID, action, targetType, targetID string, meta models.Meta) {
	metrics.App().AdminActions.WithLabelValues(action).Inc()

	entry := &models.AdminLog{
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Meta:       meta,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		logger.WarnWithFields("Failed to write admin log", err,
			logger.WithUserID(adminID),
			logger.WithTargetID(targetID),
			zap.String("action", action))
	}
}
