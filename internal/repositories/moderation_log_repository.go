package repositories

import (
	"context"

	"github.com/anonto42/pressroom/backend/internal/models"
	"gorm.io/gorm"
)

// ModerationLogRepository defines the interface for the admin audit trail
type ModerationLogRepository interface {
	CreateLog(ctx context.Context, entry *models.ModerationLog) error
	ListLogs(ctx context.Context, page, limit int) ([]models.ModerationLog, int64, error)
}

// PostgresModerationLogRepository implements ModerationLogRepository for PostgreSQL
type PostgresModerationLogRepository struct {
	db *gorm.DB
}

// NewPostgresModerationLogRepository creates a new PostgresModerationLogRepository
func NewPostgresModerationLogRepository(db *gorm.DB) *PostgresModerationLogRepository {
	return &PostgresModerationLogRepository{db: db}
}

// CreateLog appends an entry to the audit trail
func (r *PostgresModerationLogRepository) CreateLog(ctx context.Context, entry *models.ModerationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListLogs returns one page of entries, newest first
func (r *PostgresModerationLogRepository) ListLogs(ctx context.Context, page, limit int) ([]models.ModerationLog, int64, error) {
	var logs []models.ModerationLog
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.ModerationLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&logs).Error

	return logs, total, err
}
