package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfgate/pdfgate/internal/config"
	"github.com/pdfgate/pdfgate/internal/models"
	"github.com/pdfgate/pdfgate/internal/security"
	internalsettings "github.com/pdfgate/pdfgate/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed creates the bootstrap records: the settings singleton, the first
// admin account, and optionally a set of demo packages. Every step is
// idempotent so Seed runs on each start.
func Seed(ctx context.Context, conn *gorm.DB, cfg config.SeedConfig) error {
	if _, errSettings := internalsettings.Load(ctx, conn); errSettings != nil {
		return errSettings
	}
	if errAdmin := seedAdmin(ctx, conn, cfg); errAdmin != nil {
		return errAdmin
	}
	if cfg.DemoPackages {
		if errPackages := seedDemoPackages(ctx, conn); errPackages != nil {
			return errPackages
		}
	}
	return nil
}

// seedAdmin creates the configured admin account when no admin exists yet.
func seedAdmin(ctx context.Context, conn *gorm.DB, cfg config.SeedConfig) error {
	email := strings.TrimSpace(strings.ToLower(cfg.AdminEmail))
	if email == "" {
		return nil
	}

	var existing models.User
	errFind := conn.WithContext(ctx).Where("role = ?", models.RoleAdmin).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("app: check admin: %w", errFind)
	}

	if cfg.AdminPassword == "" {
		return fmt.Errorf("app: seed admin %s: missing password", email)
	}
	hash, errHash := security.HashPassword(cfg.AdminPassword)
	if errHash != nil {
		return fmt.Errorf("app: hash admin password: %w", errHash)
	}

	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = "Admin"
	}
	admin := models.User{
		Email:    email,
		Name:     name,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if errCreate := conn.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("app: seed admin: %w", errCreate)
	}
	log.WithField("email", email).Info("seeded admin account")
	return nil
}

// seedDemoPackages inserts starter packages when the table is empty.
func seedDemoPackages(ctx context.Context, conn *gorm.DB) error {
	var count int64
	if errCount := conn.WithContext(ctx).Model(&models.Package{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("app: count packages: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	packages := []models.Package{
		{
			Name:        "Monthly",
			Price:       9.99,
			Duration:    30,
			Description: "30 days of unlimited conversions",
			Features:    datatypes.JSON([]byte(`["Unlimited conversions","Priority support"]`)),
			IsActive:    true,
		},
		{
			Name:        "Yearly",
			Price:       99.99,
			Duration:    365,
			Description: "A full year of unlimited conversions",
			Features:    datatypes.JSON([]byte(`["Unlimited conversions","Priority support","Early access to new tools"]`)),
			IsActive:    true,
		},
		{
			Name:        "Lifetime",
			Price:       249.99,
			Duration:    0,
			Description: "Pay once, convert forever",
			Features:    datatypes.JSON([]byte(`["Unlimited conversions","Priority support","Lifetime updates"]`)),
			IsActive:    true,
		},
	}
	if errCreate := conn.WithContext(ctx).Create(&packages).Error; errCreate != nil {
		return fmt.Errorf("app: seed packages: %w", errCreate)
	}
	log.WithField("count", len(packages)).Info("seeded demo packages")
	return nil
}
