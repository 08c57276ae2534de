package repository

import (
	"context"

	"github.com/zfogg/murmur/internal/models"
	"gorm.io/gorm"
)

// VisibleFilter describes which posts a viewer may list.
// A post is listed when its author is the viewer, or the author is active and
// public, or the author is active, followers_only and in FollowingIDs.
type VisibleFilter struct {
	ViewerID     string
	FollowingIDs []string
	AuthorID     string
	// Query, when set, matches content case-insensitively
	Query string
}

// PostRepository handles posts and the per-post aggregates the feed needs
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// Delete removes the post with its likes and comments
	Delete(ctx context.Context, id string) error

	// ListByAuthors returns posts by any of authorIDs, newest first
	ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]models.Post, error)
	// ListVisible returns one page of posts matching filter plus the total match count
	ListVisible(ctx context.Context, filter VisibleFilter, offset, limit int) ([]models.Post, int64, error)
	// ListAll is the unfiltered admin listing
	ListAll(ctx context.Context, authorID string, offset, limit int) ([]models.Post, int64, error)
	// RecentPublic returns the newest posts by active public authors
	RecentPublic(ctx context.Context, limit int) ([]models.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Post, error)

	LikeCounts(ctx context.Context, postIDs []string) (map[string]int, error)
	CommentCounts(ctx context.Context, postIDs []string) (map[string]int, error)
	// LikedSet returns the subset of postIDs userID has liked
	LikedSet(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)

	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post == nil {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return ErrInvalidInput
	}

	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	if len(authorIDs) == 0 {
		return posts, nil
	}

	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListVisible(ctx context.Context, filter VisibleFilter, offset, limit int) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN profiles ON profiles.id = posts.author_id")

	visible := r.db.Where("profiles.active = ? AND profiles.privacy = ?", true, models.PrivacyPublic)
	if len(filter.FollowingIDs) > 0 {
		visible = visible.Or("profiles.active = ? AND profiles.privacy = ? AND posts.author_id IN ?",
			true, models.PrivacyFollowersOnly, filter.FollowingIDs)
	}
	if filter.ViewerID != "" {
		visible = visible.Or("posts.author_id = ?", filter.ViewerID)
	}
	q = q.Where(visible)

	if filter.AuthorID != "" {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.Query != "" {
		q = q.Where("LOWER(posts.content) LIKE ? ESCAPE '\\'", likePattern(filter.Query))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := q.Select("posts.*").
		Order("posts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) ListAll(ctx context.Context, authorID string, offset, limit int) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if authorID != "" {
		q = q.Where("author_id = ?", authorID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) RecentPublic(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Joins("JOIN profiles ON profiles.id = posts.author_id").
		Where("profiles.active = ? AND profiles.privacy = ?", true, models.PrivacyPublic).
		Select("posts.*").
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	var posts []models.Post
	if len(ids) == 0 {
		return posts, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (r *postRepository) LikeCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return r.countBy(ctx, &models.Like{}, postIDs)
}

func (r *postRepository) CommentCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return r.countBy(ctx, &models.Comment{}, postIDs)
}

func (r *postRepository) countBy(ctx context.Context, model interface{}, postIDs []string) (map[string]int, error) {
	if len(postIDs) == 0 {
		return map[string]int{}, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(model).
		Select("post_id AS ref_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func (r *postRepository) LikedSet(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if userID == "" || len(postIDs) == 0 {
		return liked, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}
