package repository

import (
	"context"

	"github.com/zfogg/murmur/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository handles the follow edge table
type FollowRepository interface {
	// Create inserts the edge; created is false when it already existed
	Create(ctx context.Context, followerID, followingID string) (created bool, err error)
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)

	// FollowingIDs lists the profiles followerID follows
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)

	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)

	// ListFollowers and ListFollowing return edges newest first
	ListFollowers(ctx context.Context, userID string, limit int) ([]models.Follow, error)
	ListFollowing(ctx context.Context, userID string, limit int) ([]models.Follow, error)

	// RecomputeCounts re-counts both counters of userID from edges and persists them
	RecomputeCounts(ctx context.Context, userID string) (followers, following int, err error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" || followerID == followingID {
		return false, ErrInvalidInput
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FollowingID: followingID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("following_id", &ids).Error
	return ids, err
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string, limit int) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&follows).Error
	return follows, err
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string, limit int) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&follows).Error
	return follows, err
}

func (r *followRepository) RecomputeCounts(ctx context.Context, userID string) (int, int, error) {
	followers, err := r.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err := r.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"followers_count": followers,
			"following_count": following,
		}).Error
	return int(followers), int(following), err
}
