package models

import "time"

// Stamp card catalog statuses.
const (
	// StampCardStatusActive marks a card that can be activated by serial.
	StampCardStatusActive = "active"
	// StampCardStatusInactive marks a card that is withdrawn from activation.
	StampCardStatusInactive = "inactive"
)

// StampCard is a catalog entry for a loyalty stamp card.
type StampCard struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name         string `gorm:"type:text;not null"`             // Card display name.
	SerialNumber string `gorm:"type:text;not null;uniqueIndex"` // Unique activation serial.
	Description  string `gorm:"type:text"`                      // Marketing description.
	ImageURL     string `gorm:"type:text"`                      // Card artwork reference.
	TotalStamps  int    `gorm:"not null"`                       // Stamps required to fill the card.

	Status string `gorm:"type:text;not null;default:active;index"` // active or inactive.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// UserStampCard is a member's activated instance of a catalog stamp card.
// At most one row exists per (user, stamp card) pair.
type UserStampCard struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID      uint64 `gorm:"not null;uniqueIndex:idx_user_stamp_card"` // Owning member.
	StampCardID uint64 `gorm:"not null;uniqueIndex:idx_user_stamp_card"` // Catalog card reference.

	CurrentStamps  int       `gorm:"not null;default:0"` // Stamps collected so far, never above TotalStamps.
	ActivationDate time.Time `gorm:"not null"`           // When the member activated the card.

	Card StampCard `gorm:"foreignKey:StampCardID"` // Catalog card record.
}
