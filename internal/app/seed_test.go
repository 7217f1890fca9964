package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pdfgate/pdfgate/internal/config"
	"github.com/pdfgate/pdfgate/internal/db"
	"github.com/pdfgate/pdfgate/internal/models"
	"github.com/pdfgate/pdfgate/internal/security"
	"gorm.io/gorm"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "pdfgate-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestSeed_CreatesAdminAndSettings(t *testing.T) {
	conn := openSeedDB(t)
	cfg := config.SeedConfig{
		AdminEmail:    "Admin@Example.com",
		AdminName:     "Root",
		AdminPassword: "s3cret",
	}

	if err := Seed(context.Background(), conn, cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var admin models.User
	if errFind := conn.Where("role = ?", models.RoleAdmin).First(&admin).Error; errFind != nil {
		t.Fatalf("expected a seeded admin: %v", errFind)
	}
	if admin.Email != "admin@example.com" {
		t.Fatalf("expected lowercased email, got %q", admin.Email)
	}
	if !security.CheckPassword(admin.Password, "s3cret") {
		t.Fatalf("seeded admin password does not verify")
	}

	var settingCount int64
	if errCount := conn.Model(&models.Setting{}).Count(&settingCount).Error; errCount != nil {
		t.Fatalf("count settings: %v", errCount)
	}
	if settingCount != 1 {
		t.Fatalf("expected the settings singleton, got %d rows", settingCount)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	conn := openSeedDB(t)
	cfg := config.SeedConfig{
		AdminEmail:    "admin@example.com",
		AdminPassword: "s3cret",
		DemoPackages:  true,
	}

	for i := 0; i < 3; i++ {
		if err := Seed(context.Background(), conn, cfg); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	var adminCount, packageCount int64
	if err := conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if adminCount != 1 {
		t.Fatalf("expected 1 admin, got %d", adminCount)
	}
	if err := conn.Model(&models.Package{}).Count(&packageCount).Error; err != nil {
		t.Fatalf("count packages: %v", err)
	}
	if packageCount != 3 {
		t.Fatalf("expected 3 demo packages, got %d", packageCount)
	}
}

func TestSeed_NoAdminConfigured(t *testing.T) {
	conn := openSeedDB(t)

	if err := Seed(context.Background(), conn, config.SeedConfig{}); err != nil {
		t.Fatalf("seed without admin config: %v", err)
	}

	var adminCount int64
	if errCount := conn.Model(&models.User{}).Count(&adminCount).Error; errCount != nil {
		t.Fatalf("count users: %v", errCount)
	}
	if adminCount != 0 {
		t.Fatalf("expected no users, got %d", adminCount)
	}
}

func TestSeed_AdminEmailWithoutPassword(t *testing.T) {
	conn := openSeedDB(t)

	err := Seed(context.Background(), conn, config.SeedConfig{AdminEmail: "admin@example.com"})
	if err == nil {
		t.Fatalf("expected an error when the admin password is missing")
	}
}
