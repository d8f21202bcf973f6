package models

import "time"

// User represents a loyalty program member.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Phone  string `gorm:"type:text;not null;uniqueIndex"` // Unique phone number used for login.
	PIN    string `gorm:"type:text;not null"`             // bcrypt hash of the 4-digit login PIN.
	Name   string `gorm:"type:text"`                      // Display name, settable after signup.
	Email  string `gorm:"type:text"`                      // Contact email, optional.
	Branch string `gorm:"type:text;not null;default:01"`  // Branch code the member signed up at.

	IsActive bool      `gorm:"not null;default:true"` // Soft-delete flag; rows are never removed.
	JoinDate time.Time `gorm:"not null"`              // When the member signed up.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
