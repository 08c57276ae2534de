package repository

import (
	"context"

	"github.com/zfogg/murmur/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository handles likes and comments
type EngagementRepository interface {
	// AddLike inserts the like; created is false when it already existed
	AddLike(ctx context.Context, userID, postID string) (created bool, err error)
	RemoveLike(ctx context.Context, userID, postID string) error
	HasLiked(ctx context.Context, userID, postID string) (bool, error)
	CountLikes(ctx context.Context, postID string) (int64, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	// ListComments returns a post's comments oldest first
	ListComments(ctx context.Context, postID string, limit int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new like/comment repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) AddLike(ctx context.Context, userID, postID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *engagementRepository) RemoveLike(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
}

func (r *engagementRepository) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *engagementRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *engagementRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *engagementRepository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

func (r *engagementRepository) ListComments(ctx context.Context, postID string, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *engagementRepository) DeleteComment(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
