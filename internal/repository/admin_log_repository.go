package repository

import (
	"context"

	"github.com/zfogg/murmur/internal/models"
	"gorm.io/gorm"
)

// AdminLogRepository is the append-only audit trail
type AdminLogRepository interface {
	Append(ctx context.Context, entry *models.AdminLog) error
	List(ctx context.Context, offset, limit int) ([]models.AdminLog, int64, error)
}

type adminLogRepository struct {
	db *gorm.DB
}

// NewAdminLogRepository creates a new audit log repository
func NewAdminLogRepository(db *gorm.DB) AdminLogRepository {
	return &adminLogRepository{db: db}
}

func (r *adminLogRepository) Append(ctx context.Context, entry *models.AdminLog) error {
	if entry == nil {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *adminLogRepository) List(ctx context.Context, offset, limit int) ([]models.AdminLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AdminLog{}).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AdminLog
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}
