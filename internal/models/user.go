package models

import "time"

// Role values stored on User.Role.
const (
	// RoleUser is a regular subscriber account.
	RoleUser = "user"
	// RoleAdmin is an administrator account exempt from subscription gating.
	RoleAdmin = "admin"
)

// User represents an authenticatable account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex" json:"email"` // Unique login email.
	Name     string `gorm:"type:text;not null" json:"name"`              // Display name.
	Password string `gorm:"type:text;not null" json:"-"`                 // Hashed password, never serialized.

	Role        string `gorm:"type:varchar(16);not null;default:'user'" json:"role"` // "user" or "admin".
	IsSuspended bool   `gorm:"not null;default:false" json:"is_suspended"`           // Blocks all access when true.

	TotalPdfConversions int64 `gorm:"not null;default:0" json:"total_pdf_conversions"` // Conversion usage counter.

	TOTPSecret string `gorm:"type:text" json:"-"` // TOTP secret, empty when MFA is off.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
