// Package settings defines defaults and access helpers for the single
// global settings record.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdfgate/pdfgate/internal/models"
	"gorm.io/gorm"
)

// DefaultWhatsappNumber is the placeholder contact number seeded on first read.
const DefaultWhatsappNumber = "+8801XXXXXXXXX"

// Load returns the settings singleton, creating it with defaults when absent.
func Load(ctx context.Context, conn *gorm.DB) (*models.Setting, error) {
	var setting models.Setting
	errFind := conn.WithContext(ctx).First(&setting).Error
	if errFind == nil {
		return &setting, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("settings: load: %w", errFind)
	}

	setting = models.Setting{WhatsappNumber: DefaultWhatsappNumber}
	if errCreate := conn.WithContext(ctx).Create(&setting).Error; errCreate != nil {
		return nil, fmt.Errorf("settings: create default: %w", errCreate)
	}
	return &setting, nil
}
