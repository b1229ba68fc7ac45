package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/utils"
)

// ActivityLog is append-only. It is the source of truth for quota counting
// and dashboard statistics; rows are never updated or deleted.
type ActivityLog struct {
	ID        string              `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	AccountID string              `gorm:"column:account_id;type:varchar(50);index;not null" json:"accountId"`
	Type      enum.ActivityType   `gorm:"column:type;type:varchar(20);index;not null" json:"type"`
	Status    enum.ActivityStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	Details   JSONMap             `gorm:"column:details;type:jsonb" json:"details"`
	Timestamp time.Time           `gorm:"column:timestamp;type:timestamp;index;default:current_timestamp" json:"timestamp"`
}

func (ActivityLog) TableName() string {
	return "email_logs"
}

func (m *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("log", 16)
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return nil
}
