package db

import (
	"fmt"

	"github.com/pdfgate/pdfgate/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.Subscription{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errIndex := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_subscriptions_user_active
		ON subscriptions (user_id, is_active)
	`).Error; errIndex != nil {
		return fmt.Errorf("db: create subscription index: %w", errIndex)
	}
	return nil
}
