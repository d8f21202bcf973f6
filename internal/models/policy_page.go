package models

import "time"

// PolicyPage stores a public content page such as the privacy policy or
// terms of service, looked up by slug.
type PolicyPage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Slug    string `gorm:"type:text;not null;uniqueIndex"` // URL-safe lookup key.
	Title   string `gorm:"type:text;not null"`             // Page title.
	Content string `gorm:"type:text"`                      // Rich text body.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
