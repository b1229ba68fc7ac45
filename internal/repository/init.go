package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/internal/models"
)

type Repositories struct {
	EmailAccountRepository EmailAccountRepository
	ActivityLogRepository  ActivityLogRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		EmailAccountRepository: NewEmailAccountRepository(db),
		ActivityLogRepository:  NewActivityLogRepository(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.EmailAccount{},
		&models.ActivityLog{},
	)

	sqlDB.Close()

	sqlDB, _ = db.DB()
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
