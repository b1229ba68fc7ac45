package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/models"
)

// EmailAccountRepository defines the interface for warmup account data operations
type EmailAccountRepository interface {
	Create(ctx context.Context, account *models.EmailAccount) error
	GetByID(ctx context.Context, id string) (*models.EmailAccount, error)
	ListAll(ctx context.Context) ([]models.EmailAccount, error)
	ListActive(ctx context.Context) ([]models.EmailAccount, error)
	ListExcludingStatus(ctx context.Context, status enum.AccountStatus) ([]models.EmailAccount, error)
	ListByUser(ctx context.Context, userID string) ([]models.EmailAccount, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status enum.AccountStatus) error
	UpdateDailyLimit(ctx context.Context, id string, dailyLimit int) error
}

// GormEmailAccountRepository implements EmailAccountRepository using GORM
type GormEmailAccountRepository struct {
	db *gorm.DB
}

func NewEmailAccountRepository(db *gorm.DB) EmailAccountRepository {
	return &GormEmailAccountRepository{db: db}
}

func (r *GormEmailAccountRepository) Create(ctx context.Context, account *models.EmailAccount) error {
	if account == nil {
		return ErrInvalidInput
	}

	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Create(account)
	return result.Error
}

func (r *GormEmailAccountRepository) GetByID(ctx context.Context, id string) (*models.EmailAccount, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	var account models.EmailAccount
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, result.Error
	}

	return &account, nil
}

func (r *GormEmailAccountRepository) ListAll(ctx context.Context) ([]models.EmailAccount, error) {
	var accounts []models.EmailAccount
	result := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}

	return accounts, nil
}

func (r *GormEmailAccountRepository) ListActive(ctx context.Context) ([]models.EmailAccount, error) {
	var accounts []models.EmailAccount
	result := r.db.WithContext(ctx).
		Where("status = ?", enum.AccountStatusActive).
		Order("created_at ASC").
		Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}

	return accounts, nil
}

func (r *GormEmailAccountRepository) ListExcludingStatus(ctx context.Context, status enum.AccountStatus) ([]models.EmailAccount, error) {
	var accounts []models.EmailAccount
	result := r.db.WithContext(ctx).
		Where("status <> ?", status).
		Order("created_at ASC").
		Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}

	return accounts, nil
}

func (r *GormEmailAccountRepository) ListByUser(ctx context.Context, userID string) ([]models.EmailAccount, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	var accounts []models.EmailAccount
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}

	return accounts, nil
}

func (r *GormEmailAccountRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrInvalidInput
	}

	var count int64
	result := r.db.WithContext(ctx).Model(&models.EmailAccount{}).
		Where("user_id = ?", userID).
		Count(&count)
	return count, result.Error
}

// UpdateStatus performs a row-level atomic status update; both orchestrators
// may call it concurrently for different accounts.
func (r *GormEmailAccountRepository) UpdateStatus(ctx context.Context, id string, status enum.AccountStatus) error {
	if id == "" || status == "" {
		return ErrInvalidInput
	}

	result := r.db.WithContext(ctx).Model(&models.EmailAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *GormEmailAccountRepository) UpdateDailyLimit(ctx context.Context, id string, dailyLimit int) error {
	if id == "" || dailyLimit <= 0 {
		return ErrInvalidInput
	}

	result := r.db.WithContext(ctx).Model(&models.EmailAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"daily_limit": dailyLimit,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}
