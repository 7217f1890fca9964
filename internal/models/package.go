package models

import (
	"time"

	"gorm.io/datatypes"
)

// Package represents a purchasable subscription plan.
type Package struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Name        string         `gorm:"type:varchar(255);not null" json:"name"`           // Package name.
	Price       float64        `gorm:"type:decimal(10,2);not null;default:0" json:"price"` // Price in the display currency.
	Duration    int            `gorm:"not null;default:0" json:"duration"`               // Validity in days, 0 = lifetime.
	Description string         `gorm:"type:text" json:"description"`                     // Package description.
	Features    datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"features"` // Feature strings.

	IsActive bool `gorm:"not null;default:true" json:"is_active"` // Visible to end users when true.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}
