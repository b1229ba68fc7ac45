package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/utils"
)

type EmailAccount struct {
	ID           string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	UserID       string `gorm:"column:user_id;type:varchar(255);index" json:"userId"`
	EmailAddress string `gorm:"column:email_address;type:varchar(255);index;not null" json:"emailAddress"`
	// SMTP Configuration
	SmtpHost string `gorm:"column:smtp_host;type:varchar(255);not null" json:"smtpHost"`
	SmtpPort int    `gorm:"column:smtp_port;not null" json:"smtpPort"`
	// IMAP Configuration
	ImapHost string `gorm:"column:imap_host;type:varchar(255);not null" json:"imapHost"`
	ImapPort int    `gorm:"column:imap_port;not null" json:"imapPort"`
	// Credentials, sealed by the vault. Never store or log the plaintext.
	EncryptedPassword string `gorm:"column:encrypted_password;type:text;not null" json:"-"`
	PasswordNonce     string `gorm:"column:password_nonce;type:varchar(64);not null" json:"-"`
	// Warmup state
	DailyLimit         int                `gorm:"column:daily_limit;not null;default:5" json:"dailyLimit"`
	Status             enum.AccountStatus `gorm:"column:status;type:varchar(50);index;default:active" json:"status"`
	CurrentWarmupScore int                `gorm:"column:current_warmup_score;not null;default:0" json:"currentWarmupScore"`
	// Standard timestamps
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (EmailAccount) TableName() string {
	return "email_accounts"
}

func (m *EmailAccount) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("acct", 16)
	}
	if m.Status == "" {
		m.Status = enum.AccountStatusActive
	}
	return nil
}
