// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// It contains authentication credentials and profile fields.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the login name. It must be unique across all users.
	Username string `gorm:"uniqueIndex;size:150;not null"`

	// Email must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`

	// Password is the bcrypt hash of the user's password.
	// This never stores plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// IsActive is false for disabled accounts, which cannot log in.
	// No column default: gorm would replace an explicit false with it.
	IsActive bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
