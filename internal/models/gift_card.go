package models

import "time"

// Gift card catalog statuses. A gift serial is a single-use voucher: the
// catalog row carries the claim state, so each serial can be claimed by
// exactly one member and then used exactly once.
const (
	// GiftCardStatusUnclaimed marks a voucher nobody has activated yet.
	GiftCardStatusUnclaimed = "unclaimed"
	// GiftCardStatusClaimed marks a voucher activated by a member.
	GiftCardStatusClaimed = "claimed"
	// GiftCardStatusUsed marks a redeemed voucher. Terminal.
	GiftCardStatusUsed = "used"
)

// GiftCard is a catalog entry for a single-use gift voucher.
type GiftCard struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name         string `gorm:"type:text;not null"`             // Gift display name.
	SerialNumber string `gorm:"type:text;not null;uniqueIndex"` // Unique activation serial.
	Description  string `gorm:"type:text"`                      // Marketing description.
	Type         string `gorm:"type:text"`                      // Gift category label.
	UsageLimit   int    `gorm:"not null;default:1"`             // Redemptions allowed per voucher.
	ValidityDays int    `gorm:"not null;default:0"`             // Days until expiry after claim, 0 for none.

	Status     string     `gorm:"type:text;not null;default:unclaimed;index"` // unclaimed, claimed or used.
	ExpiryDate *time.Time // Expiry time, set on claim when ValidityDays is positive.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// UserGiftCard records a member's claim on a gift voucher.
type UserGiftCard struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID     uint64 `gorm:"not null;index"` // Claiming member.
	GiftCardID uint64 `gorm:"not null;index"` // Catalog voucher reference.

	ClaimDate time.Time  `gorm:"not null"` // When the member claimed the voucher.
	UsedDate  *time.Time // Redemption time; nil while unused, set at most once.

	Gift GiftCard `gorm:"foreignKey:GiftCardID"` // Catalog voucher record.
}
