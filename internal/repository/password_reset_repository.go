package repository

import (
	"context"
	"time"

	"github.com/zfogg/murmur/internal/models"
	"gorm.io/gorm"
)

// PasswordResetRepository stores hashed single-use reset tokens
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&reset).Error; err != nil {
		return nil, notFound(err)
	}
	return &reset, nil
}

// MarkUsed consumes the token; a token that was already used is reported as not found
func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStale removes tokens that were used or expired before now
func (r *passwordResetRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("used_at IS NOT NULL OR expires_at < ?", now).
		Delete(&models.PasswordReset{})
	return result.RowsAffected, result.Error
}
