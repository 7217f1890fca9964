package models

import "time"

// Setting is the single global configuration record.
// It is auto-created with defaults on first read.
type Setting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	WhatsappNumber string `gorm:"type:varchar(32);not null" json:"whatsapp_number"` // Contact number shown to users.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}
