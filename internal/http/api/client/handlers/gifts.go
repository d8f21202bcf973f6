package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/agorawin/loyalty-server/internal/db"
	"github.com/agorawin/loyalty-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftHandler handles gift voucher endpoints for members.
type GiftHandler struct {
	db *gorm.DB
}

// NewGiftHandler constructs a GiftHandler.
func NewGiftHandler(db *gorm.DB) *GiftHandler {
	return &GiftHandler{db: db}
}

// giftCardDTO is the catalog voucher payload.
type giftCardDTO struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name"`
	SerialNumber string     `json:"serial_number"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	UsageLimit   int        `json:"usage_limit"`
	ValidityDays int        `json:"validity_days"`
	Status       string     `json:"status"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	CreatedAt    time.Time  `json:"created_at"`
}

// userGiftDTO is the claimed-voucher payload: the claim row plus its
// catalog voucher.
type userGiftDTO struct {
	ID         uint64      `json:"id"`
	UserID     uint64      `json:"user_id"`
	GiftCardID uint64      `json:"gift_card_id"`
	ClaimDate  time.Time   `json:"claim_date"`
	UsedDate   *time.Time  `json:"used_date"`
	Gift       giftCardDTO `json:"gift"`
}

// newGiftCardDTO maps a catalog row to its payload.
func newGiftCardDTO(gift models.GiftCard) giftCardDTO {
	return giftCardDTO{
		ID:           gift.ID,
		Name:         gift.Name,
		SerialNumber: gift.SerialNumber,
		Description:  gift.Description,
		Type:         gift.Type,
		UsageLimit:   gift.UsageLimit,
		ValidityDays: gift.ValidityDays,
		Status:       gift.Status,
		ExpiryDate:   gift.ExpiryDate,
		CreatedAt:    gift.CreatedAt,
	}
}

// lockForUpdate adds a row lock on dialects that support it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if dbutil.IsSQLite(tx) {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// List returns the caller's claimed vouchers with catalog details.
func (h *GiftHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var claimed []models.UserGiftCard
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("Gift").
		Where("user_id = ?", userID).
		Order("claim_date DESC").
		Find(&claimed).Error; errFind != nil {
		log.WithError(errFind).Error("gifts: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	gifts := make([]userGiftDTO, 0, len(claimed))
	for _, row := range claimed {
		gifts = append(gifts, userGiftDTO{
			ID:         row.ID,
			UserID:     row.UserID,
			GiftCardID: row.GiftCardID,
			ClaimDate:  row.ClaimDate,
			UsedDate:   row.UsedDate,
			Gift:       newGiftCardDTO(row.Gift),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "gifts": gifts})
}

// activateGiftRequest defines the request body for gift activation.
type activateGiftRequest struct {
	SerialNumber string `json:"serial_number"`
}

// Activate claims an unclaimed voucher by serial. The catalog row carries
// the claim state, so the whole transition runs in one transaction with the
// row locked: a serial can only ever be claimed once, by one member.
func (h *GiftHandler) Activate(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var body activateGiftRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Gift serial number is required"})
		return
	}
	serial := strings.TrimSpace(body.SerialNumber)
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Gift serial number is required"})
		return
	}

	var status int
	var payload gin.H
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var gift models.GiftCard
		if errFind := lockForUpdate(tx).
			Where("serial_number = ? AND status = ?", serial, models.GiftCardStatusUnclaimed).
			First(&gift).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				status = http.StatusNotFound
				payload = gin.H{"success": false, "message": "Gift not found or already claimed"}
				return errFind
			}
			return errFind
		}

		now := time.Now().UTC()
		claim := models.UserGiftCard{
			UserID:     userID,
			GiftCardID: gift.ID,
			ClaimDate:  now,
		}
		if errCreate := tx.Create(&claim).Error; errCreate != nil {
			return errCreate
		}

		updates := map[string]any{"status": models.GiftCardStatusClaimed}
		if gift.ValidityDays > 0 && gift.ExpiryDate == nil {
			expiry := now.AddDate(0, 0, gift.ValidityDays)
			updates["expiry_date"] = expiry
			gift.ExpiryDate = &expiry
		}
		if errUpdate := tx.Model(&gift).Updates(updates).Error; errUpdate != nil {
			return errUpdate
		}

		gift.Status = models.GiftCardStatusClaimed
		status = http.StatusOK
		payload = gin.H{
			"success": true,
			"message": "Gift activated successfully",
			"gift":    newGiftCardDTO(gift),
		}
		return nil
	})
	if errTx != nil {
		if status != 0 {
			c.JSON(status, payload)
			return
		}
		log.WithError(errTx).Error("gifts: activate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(status, payload)
}

// useGiftRequest defines the request body for redeeming a gift.
type useGiftRequest struct {
	GiftID uint64 `json:"gift_id"`
}

// Use redeems a claimed voucher. Marking the claim row and the catalog row
// happens in one transaction; a used voucher is terminal.
func (h *GiftHandler) Use(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var body useGiftRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.GiftID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Gift ID is required"})
		return
	}

	var status int
	var payload gin.H
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var claim models.UserGiftCard
		if errFind := lockForUpdate(tx).
			Where("id = ? AND user_id = ? AND used_date IS NULL", body.GiftID, userID).
			First(&claim).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				status = http.StatusNotFound
				payload = gin.H{"success": false, "message": "Gift not found, already used, or does not belong to user"}
				return errFind
			}
			return errFind
		}

		now := time.Now().UTC()
		if errUpdate := tx.Model(&claim).Update("used_date", now).Error; errUpdate != nil {
			return errUpdate
		}
		if errUpdate := tx.Model(&models.GiftCard{}).
			Where("id = ?", claim.GiftCardID).
			Update("status", models.GiftCardStatusUsed).Error; errUpdate != nil {
			return errUpdate
		}

		status = http.StatusOK
		payload = gin.H{"success": true, "message": "Gift used successfully"}
		return nil
	})
	if errTx != nil {
		if status != 0 {
			c.JSON(status, payload)
			return
		}
		log.WithError(errTx).Error("gifts: use failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(status, payload)
}
