package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CardHandler handles stamp card endpoints for members.
type CardHandler struct {
	db *gorm.DB
}

// NewCardHandler constructs a CardHandler.
func NewCardHandler(db *gorm.DB) *CardHandler {
	return &CardHandler{db: db}
}

// stampCardDTO is the catalog card payload.
type stampCardDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	TotalStamps  int       `json:"total_stamps"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// userCardDTO is the owned-card payload: the ownership row plus its catalog
// card.
type userCardDTO struct {
	ID             uint64       `json:"id"`
	UserID         uint64       `json:"user_id"`
	StampCardID    uint64       `json:"stamp_card_id"`
	CurrentStamps  int          `json:"current_stamps"`
	ActivationDate time.Time    `json:"activation_date"`
	Card           stampCardDTO `json:"card"`
}

// newStampCardDTO maps a catalog row to its payload.
func newStampCardDTO(card models.StampCard) stampCardDTO {
	return stampCardDTO{
		ID:           card.ID,
		Name:         card.Name,
		SerialNumber: card.SerialNumber,
		Description:  card.Description,
		ImageURL:     card.ImageURL,
		TotalStamps:  card.TotalStamps,
		Status:       card.Status,
		CreatedAt:    card.CreatedAt,
	}
}

// List returns the caller's activated stamp cards with catalog details.
func (h *CardHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var owned []models.UserStampCard
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("Card").
		Where("user_id = ?", userID).
		Order("activation_date DESC").
		Find(&owned).Error; errFind != nil {
		log.WithError(errFind).Error("cards: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	cards := make([]userCardDTO, 0, len(owned))
	for _, row := range owned {
		cards = append(cards, userCardDTO{
			ID:             row.ID,
			UserID:         row.UserID,
			StampCardID:    row.StampCardID,
			CurrentStamps:  row.CurrentStamps,
			ActivationDate: row.ActivationDate,
			Card:           newStampCardDTO(row.Card),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cards": cards})
}

// activateCardRequest defines the request body for card activation.
type activateCardRequest struct {
	SerialNumber string `json:"serial_number"`
}

// Activate claims a catalog stamp card by serial for the caller. Each member
// can hold at most one instance of a given card.
func (h *CardHandler) Activate(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var body activateCardRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Card serial number is required"})
		return
	}
	serial := strings.TrimSpace(body.SerialNumber)
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Card serial number is required"})
		return
	}

	var card models.StampCard
	errFind := h.db.WithContext(c.Request.Context()).
		Where("serial_number = ? AND status = ?", serial, models.StampCardStatusActive).
		First(&card).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Card not found or inactive"})
			return
		}
		log.WithError(errFind).Error("cards: query catalog failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	var existing models.UserStampCard
	errOwned := h.db.WithContext(c.Request.Context()).
		Where("user_id = ? AND stamp_card_id = ?", userID, card.ID).
		First(&existing).Error
	if errOwned == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "You already have this card"})
		return
	}
	if !errors.Is(errOwned, gorm.ErrRecordNotFound) {
		log.WithError(errOwned).Error("cards: query ownership failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	owned := models.UserStampCard{
		UserID:         userID,
		StampCardID:    card.ID,
		CurrentStamps:  0,
		ActivationDate: time.Now().UTC(),
	}
	// The unique (user, card) index backstops the ownership check against
	// concurrent activations of the same serial.
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&owned).Error; errCreate != nil {
		log.WithError(errCreate).Error("cards: create ownership failed")
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "You already have this card"})
		return
	}

	dto := newStampCardDTO(card)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Card activated successfully",
		"card": gin.H{
			"id":             dto.ID,
			"name":           dto.Name,
			"serial_number":  dto.SerialNumber,
			"description":    dto.Description,
			"image_url":      dto.ImageURL,
			"total_stamps":   dto.TotalStamps,
			"status":         dto.Status,
			"created_at":     dto.CreatedAt,
			"current_stamps": 0,
		},
	})
}

// useCardRequest defines the request body for adding a stamp.
type useCardRequest struct {
	CardID uint64 `json:"card_id"`
}

// Use adds one stamp to an owned card. The increment is a single
// conditional UPDATE, so concurrent uses can never push the counter past
// the card's total: the last accepted stamp lands exactly on total_stamps.
func (h *CardHandler) Use(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var body useCardRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.CardID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Card ID is required"})
		return
	}

	var owned models.UserStampCard
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Card").
		Where("id = ? AND user_id = ?", body.CardID, userID).
		First(&owned).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Card not found or does not belong to user"})
			return
		}
		log.WithError(errFind).Error("cards: query ownership failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	result := h.db.WithContext(c.Request.Context()).Model(&models.UserStampCard{}).
		Where("id = ? AND current_stamps < ?", owned.ID, owned.Card.TotalStamps).
		UpdateColumn("current_stamps", gorm.Expr("current_stamps + 1"))
	if result.Error != nil {
		log.WithError(result.Error).Error("cards: increment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Card is already full"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stamp added successfully"})
}
