// Package posts owns post authoring, likes and comments.
package posts

import (
	"context"
	"errors"
	"strings"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/notifications"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/telemetry"
	"github.com/zfogg/murmur/internal/util"
	"github.com/zfogg/murmur/internal/visibility"
)

const (
	DefaultCommentLimit = 50
	MaxCommentLimit     = 100
)

// Indexer mirrors posts into the search index
type Indexer interface {
	IndexPost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, postID string) error
}

// CreateInput is the body of POST /posts
type CreateInput struct {
	Content  string `json:"content"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
}

// UpdateInput is the body of PATCH /posts/:id. Nil fields are left alone.
type UpdateInput struct {
	Content  *string `json:"content"`
	Category *string `json:"category"`
	ImageURL *string `json:"image_url"`
}

// LikeResult is returned by the like endpoints
type LikeResult struct {
	Liked bool                   `json:"liked"`
	Total int64                  `json:"total"`
	Actor *models.ProfileSummary `json:"actor,omitempty"`
}

// Comment is a comment with its author's public summary
type Comment struct {
	models.Comment
	Profile *models.ProfileSummary `json:"profile"`
}

// Service implements post, like and comment operations
type Service struct {
	posts      repository.PostRepository
	engagement repository.EngagementRepository
	profiles   repository.ProfileRepository
	resolver   *visibility.Resolver
	feed       *feed.Aggregator
	emitter    notifications.Emitter
	index      Indexer
}

// NewService creates a post service. index may be nil.
func NewService(
	posts repository.PostRepository,
	engagement repository.EngagementRepository,
	profiles repository.ProfileRepository,
	resolver *visibility.Resolver,
	aggregator *feed.Aggregator,
	emitter notifications.Emitter,
	index Indexer,
) *Service {
	return &Service{
		posts:      posts,
		engagement: engagement,
		profiles:   profiles,
		resolver:   resolver,
		feed:       aggregator,
		emitter:    emitter,
		index:      index,
	}
}

// Create publishes a post for authorID and recomputes their posts_count
func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (*feed.Post, error) {
	if _, err := s.activeActor(ctx, authorID); err != nil {
		return nil, err
	}

	content, ok := util.TrimmedWithin(in.Content, models.MaxPostLength)
	if !ok {
		return nil, apierrors.Validation("Content required and <=280 chars")
	}

	category := models.CategoryGeneral
	if in.Category != "" {
		category = models.Category(in.Category)
		if !category.Valid() {
			return nil, apierrors.Validation("Invalid category")
		}
	}

	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
		Category: category,
		ImageURL: strings.TrimSpace(in.ImageURL),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apierrors.Upstream("Failed to create post", err)
	}
	metrics.App().PostsCreated.WithLabelValues(string(category)).Inc()

	if _, err := s.profiles.RecountPosts(ctx, authorID); err != nil {
		logger.WarnWithFields("Failed to recount posts", err, logger.WithUserID(authorID))
	}
	s.indexAsync(post)

	enriched, err := s.feed.Enrich(ctx, authorID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// Update edits a post the caller owns
func (s *Service) Update(ctx context.Context, userID, postID string, in UpdateInput) error {
	fields := make(map[string]interface{})
	if in.Content != nil {
		content, ok := util.TrimmedWithin(*in.Content, models.MaxPostLength)
		if !ok {
			return apierrors.Validation("Invalid content")
		}
		fields["content"] = content
	}
	if in.Category != nil {
		category := models.Category(*in.Category)
		if !category.Valid() {
			return apierrors.Validation("Invalid category")
		}
		fields["category"] = category
	}
	if in.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if len(fields) == 0 {
		return apierrors.Validation("No changes")
	}

	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	if err := s.posts.Update(ctx, post.ID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.NotFound("Not found")
		}
		return apierrors.Upstream("Failed to update post", err)
	}

	if updated, err := s.posts.GetByID(ctx, post.ID); err == nil {
		s.indexAsync(updated)
	}
	return nil
}

// Delete removes a post the caller owns together with its likes and comments
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	return s.remove(ctx, post, "author")
}

// Remove deletes any post. Used by moderation.
func (s *Service) Remove(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.remove(ctx, post, "admin"); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) remove(ctx context.Context, post *models.Post, by string) error {
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.NotFound("Not found")
		}
		return apierrors.Upstream("Failed to delete post", err)
	}
	metrics.App().PostsDeleted.WithLabelValues(by).Inc()

	if err := s.profiles.DecrementPosts(ctx, post.AuthorID); err != nil {
		logger.WarnWithFields("Failed to decrement posts_count", err,
			logger.WithUserID(post.AuthorID), logger.WithPostID(post.ID))
	}

	if s.index != nil {
		go func(id string) {
			ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
			defer cancel()
			if err := s.index.DeletePost(ctx, id); err != nil {
				logger.WarnWithFields("Failed to remove post from search index", err, logger.WithPostID(id))
			}
		}(post.ID)
	}
	return nil
}

// Like records userID's like on postID. Liking twice is a no-op that does
// not re-notify.
func (s *Service) Like(ctx context.Context, userID, postID string) (_ *LikeResult, err error) {
	ctx, span := telemetry.TraceSocial(ctx, "like", userID, postID)
	defer func() { telemetry.EndSpan(span, err) }()

	actor, err := s.activeActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	created, err := s.engagement.AddLike(ctx, userID, post.ID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to like post", err)
	}
	if created {
		metrics.App().LikesTotal.Inc()
		if post.AuthorID != userID {
			s.emitter.EmitAsync(notifications.Event{
				RecipientID: post.AuthorID,
				ActorID:     userID,
				Type:        models.NotificationLike,
				PostID:      post.ID,
			})
		}
	}

	total, err := s.engagement.CountLikes(ctx, post.ID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to count likes", err)
	}

	summary := actor.Summary()
	return &LikeResult{Liked: true, Total: total, Actor: &summary}, nil
}

// Unlike removes userID's like if present
func (s *Service) Unlike(ctx context.Context, userID, postID string) (_ *LikeResult, err error) {
	ctx, span := telemetry.TraceSocial(ctx, "unlike", userID, postID)
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := s.activeActor(ctx, userID); err != nil {
		return nil, err
	}
	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if err := s.engagement.RemoveLike(ctx, userID, post.ID); err != nil {
		return nil, apierrors.Upstream("Failed to unlike post", err)
	}

	total, err := s.engagement.CountLikes(ctx, post.ID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to count likes", err)
	}
	return &LikeResult{Liked: false, Total: total}, nil
}

// LikeStatus reports whether userID likes a post they can see, and its like total
func (s *Service) LikeStatus(ctx context.Context, userID, postID string) (*LikeResult, error) {
	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.engagement.HasLiked(ctx, userID, post.ID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load like status", err)
	}
	total, err := s.engagement.CountLikes(ctx, post.ID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to count likes", err)
	}
	return &LikeResult{Liked: liked, Total: total}, nil
}

// Comments lists a visible post's comments oldest first
func (s *Service) Comments(ctx context.Context, viewerID, postID string, limit int) ([]Comment, error) {
	if limit <= 0 {
		limit = DefaultCommentLimit
	}
	if limit > MaxCommentLimit {
		limit = MaxCommentLimit
	}

	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}

	comments, err := s.engagement.ListComments(ctx, postID, limit)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load comments", err)
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	profiles, err := s.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load comments", err)
	}

	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		item := Comment{Comment: c}
		if p, ok := profiles[c.AuthorID]; ok {
			summary := p.Summary()
			item.Profile = &summary
		}
		out = append(out, item)
	}
	return out, nil
}

// AddComment comments on a post and notifies its author
func (s *Service) AddComment(ctx context.Context, userID, postID, content string) (_ *Comment, err error) {
	ctx, span := telemetry.TraceSocial(ctx, "comment", userID, postID)
	defer func() { telemetry.EndSpan(span, err) }()

	actor, err := s.activeActor(ctx, userID)
	if err != nil {
		return nil, err
	}

	content, ok := util.TrimmedWithin(content, models.MaxCommentLength)
	if !ok {
		return nil, apierrors.Validation("Content required and <=200 chars")
	}

	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: userID, Content: content}
	if err := s.engagement.CreateComment(ctx, comment); err != nil {
		return nil, apierrors.Upstream("Failed to add comment", err)
	}
	metrics.App().CommentsTotal.Inc()

	if post.AuthorID != userID {
		s.emitter.EmitAsync(notifications.Event{
			RecipientID: post.AuthorID,
			ActorID:     userID,
			Type:        models.NotificationComment,
			PostID:      post.ID,
			CommentID:   comment.ID,
		})
	}

	summary := actor.Summary()
	return &Comment{Comment: *comment, Profile: &summary}, nil
}

// DeletePostComment deletes commentID, which must belong to postID and to userID
func (s *Service) DeletePostComment(ctx context.Context, userID, postID, commentID string) error {
	if commentID == "" {
		return apierrors.Validation("Missing comment_id")
	}
	if _, err := s.activeActor(ctx, userID); err != nil {
		return err
	}

	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return apierrors.NotFound("Not found")
	}
	return s.deleteOwnComment(ctx, userID, comment)
}

// DeleteComment deletes a comment authored by userID
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	return s.deleteOwnComment(ctx, userID, comment)
}

// RemoveComment deletes any comment. Used by moderation.
func (s *Service) RemoveComment(ctx context.Context, commentID string) (*models.Comment, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.engagement.DeleteComment(ctx, comment.ID); err != nil {
		return nil, apierrors.Upstream("Failed to delete comment", err)
	}
	return comment, nil
}

func (s *Service) deleteOwnComment(ctx context.Context, userID string, comment *models.Comment) error {
	if comment.AuthorID != userID {
		return apierrors.Forbidden("Forbidden")
	}
	if err := s.engagement.DeleteComment(ctx, comment.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.NotFound("Not found")
		}
		return apierrors.Upstream("Failed to delete comment", err)
	}
	return nil
}

func (s *Service) loadComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.engagement.GetComment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load comment", err)
	}
	return comment, nil
}

func (s *Service) loadPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load post", err)
	}
	return post, nil
}

func (s *Service) ownedPost(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apierrors.Forbidden("Forbidden")
	}
	return post, nil
}

// visiblePost loads a post whose author's posts the viewer may see
func (s *Service) visiblePost(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	author, err := s.profiles.GetByID(ctx, post.AuthorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Upstream("Failed to load post", err)
	}
	decision, err := s.resolver.CanViewPosts(ctx, viewerID, author)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load post", err)
	}
	if !decision.Allowed() {
		return nil, apierrors.Forbidden("Forbidden")
	}
	return post, nil
}

func (s *Service) activeActor(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Unauthorized("Profile not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}
	if !profile.Active {
		return nil, apierrors.Forbidden("Account deactivated")
	}
	return profile, nil
}
