package repository

import (
	"context"
	"time"

	"github.com/zfogg/murmur/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository handles all database operations for profiles
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// Search matches username case-insensitively, newest first
	Search(ctx context.Context, query string, offset, limit int) ([]models.Profile, int64, error)
	// SearchActive is Search restricted to active profiles
	SearchActive(ctx context.Context, query string, offset, limit int) ([]models.Profile, int64, error)

	// RecountPosts recomputes and persists posts_count from the posts table
	RecountPosts(ctx context.Context, id string) (int, error)
	// DecrementPosts lowers posts_count by one without going below zero
	DecrementPosts(ctx context.Context, id string) error

	Count(ctx context.Context) (int64, error)
	CountUpdatedSince(ctx context.Context, since time.Time) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile == nil {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// GetByEmail gets a profile by email (case-insensitive)
func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&profile).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error) {
	out := make(map[string]*models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		out[profiles[i].ID] = &profiles[i]
	}
	return out, nil
}

func (r *profileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *profileRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return ErrInvalidInput
	}

	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
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

func (r *profileRepository) Search(ctx context.Context, query string, offset, limit int) ([]models.Profile, int64, error) {
	return r.search(ctx, query, false, offset, limit)
}

func (r *profileRepository) SearchActive(ctx context.Context, query string, offset, limit int) ([]models.Profile, int64, error) {
	return r.search(ctx, query, true, offset, limit)
}

func (r *profileRepository) search(ctx context.Context, query string, activeOnly bool, offset, limit int) ([]models.Profile, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Profile{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if query != "" {
		q = q.Where("LOWER(username) LIKE ? ESCAPE '\\'", likePattern(query))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	err := q.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error
	return profiles, total, err
}

func (r *profileRepository) RecountPosts(ctx context.Context, id string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}

	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("posts_count", count).Error
	return int(count), err
}

func (r *profileRepository) DecrementPosts(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("posts_count", gorm.Expr("CASE WHEN posts_count > 0 THEN posts_count - 1 ELSE 0 END")).Error
}

func (r *profileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Count(&count).Error
	return count, err
}

func (r *profileRepository) CountUpdatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("updated_at >= ?", since).
		Count(&count).Error
	return count, err
}
