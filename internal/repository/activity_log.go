package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/models"
)

// ActivityLogRepository is the append-only log behind quota counting and the
// dashboard feed. Entries are never updated or deleted.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
	CountSentSince(ctx context.Context, accountID string, since time.Time) (int64, error)
	CountSentSinceAll(ctx context.Context, since time.Time) (int64, error)
	CountByTypeAndStatus(ctx context.Context, activityType enum.ActivityType, status enum.ActivityStatus) (int64, error)
	CountByType(ctx context.Context, activityType enum.ActivityType) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type GormActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

func (r *GormActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if entry == nil || entry.AccountID == "" {
		return ErrInvalidInput
	}

	result := r.db.WithContext(ctx).Create(entry)
	return result.Error
}

// CountSentSince counts successful sends for one account from the given
// boundary onward. Callers compute the midnight boundary once per cycle.
func (r *GormActivityLogRepository) CountSentSince(ctx context.Context, accountID string, since time.Time) (int64, error) {
	if accountID == "" {
		return 0, ErrInvalidInput
	}

	var count int64
	result := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("account_id = ?", accountID).
		Where("type = ?", enum.ActivitySent).
		Where("status = ?", enum.ActivityStatusSuccess).
		Where("timestamp >= ?", since).
		Count(&count)
	return count, result.Error
}

func (r *GormActivityLogRepository) CountSentSinceAll(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("type = ?", enum.ActivitySent).
		Where("status = ?", enum.ActivityStatusSuccess).
		Where("timestamp >= ?", since).
		Count(&count)
	return count, result.Error
}

func (r *GormActivityLogRepository) CountByTypeAndStatus(ctx context.Context, activityType enum.ActivityType, status enum.ActivityStatus) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("type = ?", activityType).
		Where("status = ?", status).
		Count(&count)
	return count, result.Error
}

func (r *GormActivityLogRepository) CountByType(ctx context.Context, activityType enum.ActivityType) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("type = ?", activityType).
		Count(&count)
	return count, result.Error
}

func (r *GormActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []models.ActivityLog
	result := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
