package models

import "time"

// Subscription grants one user access under one package for a time window.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;index" json:"user_id"`          // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"` // Owning user.

	PackageID uint64   `gorm:"not null;index" json:"package_id"`              // Granted package ID.
	Package   *Package `gorm:"foreignKey:PackageID" json:"package,omitempty"` // Granted package.

	StartDate time.Time  `gorm:"not null" json:"start_date"` // Grant start.
	EndDate   *time.Time `json:"end_date"`                   // Grant end, nil = lifetime.

	IsActive bool `gorm:"not null;default:true" json:"is_active"` // Administrative on/off switch.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

// IsExpired derives expiry from the end date at the given instant.
// Expiry is never stored; every read recomputes it.
func (s *Subscription) IsExpired(now time.Time) bool {
	if s == nil || s.EndDate == nil {
		return false
	}
	return now.After(*s.EndDate)
}
