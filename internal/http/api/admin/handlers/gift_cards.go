package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GiftCardHandler handles admin operations on the gift voucher catalog.
type GiftCardHandler struct {
	db *gorm.DB
}

// NewGiftCardHandler constructs a GiftCardHandler.
func NewGiftCardHandler(db *gorm.DB) *GiftCardHandler {
	return &GiftCardHandler{db: db}
}

// createGiftCardRequest captures the payload for creating a single voucher.
type createGiftCardRequest struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	UsageLimit   int    `json:"usage_limit"`
	ValidityDays int    `json:"validity_days"`
}

// formatGift maps a catalog row to its admin payload.
func (h *GiftCardHandler) formatGift(gift *models.GiftCard) gin.H {
	return gin.H{
		"id":            gift.ID,
		"name":          gift.Name,
		"serial_number": gift.SerialNumber,
		"description":   gift.Description,
		"type":          gift.Type,
		"usage_limit":   gift.UsageLimit,
		"validity_days": gift.ValidityDays,
		"status":        gift.Status,
		"expiry_date":   gift.ExpiryDate,
		"created_at":    gift.CreatedAt,
	}
}

// Create validates input and persists a new unclaimed voucher.
func (h *GiftCardHandler) Create(c *gin.Context) {
	var body createGiftCardRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	serial := strings.TrimSpace(body.SerialNumber)
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing serial_number"})
		return
	}
	if body.ValidityDays < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validity_days cannot be negative"})
		return
	}
	usageLimit := body.UsageLimit
	if usageLimit <= 0 {
		usageLimit = 1
	}

	gift := models.GiftCard{
		Name:         name,
		SerialNumber: serial,
		Description:  strings.TrimSpace(body.Description),
		Type:         strings.TrimSpace(body.Type),
		UsageLimit:   usageLimit,
		ValidityDays: body.ValidityDays,
		Status:       models.GiftCardStatusUnclaimed,
		CreatedAt:    time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&gift).Error; errCreate != nil {
		log.WithError(errCreate).Error("gift cards: create failed")
		c.JSON(http.StatusConflict, gin.H{"error": "serial_number already exists"})
		return
	}
	c.JSON(http.StatusCreated, h.formatGift(&gift))
}

// batchCreateGiftCardRequest captures the payload for batch creation.
type batchCreateGiftCardRequest struct {
	Name         string `json:"name"`
	Count        int    `json:"count"`
	SerialPrefix string `json:"serial_prefix"`
	Type         string `json:"type"`
	ValidityDays int    `json:"validity_days"`
}

// BatchCreate generates multiple vouchers with random serials in a single
// transaction.
func (h *GiftCardHandler) BatchCreate(c *gin.Context) {
	var body batchCreateGiftCardRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.Count <= 0 || body.Count > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and 1000"})
		return
	}
	if body.ValidityDays < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validity_days cannot be negative"})
		return
	}
	prefix := strings.TrimSpace(body.SerialPrefix)
	if prefix == "" {
		prefix = "GIFT"
	}

	now := time.Now().UTC()
	gifts := make([]models.GiftCard, 0, body.Count)
	for i := 0; i < body.Count; i++ {
		serial, errSerial := generateSerial(prefix)
		if errSerial != nil {
			log.WithError(errSerial).Error("gift cards: generate serial failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "generate serial failed"})
			return
		}
		gifts = append(gifts, models.GiftCard{
			Name:         name,
			SerialNumber: serial,
			Type:         strings.TrimSpace(body.Type),
			UsageLimit:   1,
			ValidityDays: body.ValidityDays,
			Status:       models.GiftCardStatusUnclaimed,
			CreatedAt:    now,
		})
	}

	if errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&gifts).Error
	}); errTx != nil {
		log.WithError(errTx).Error("gift cards: batch create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch create failed"})
		return
	}

	serials := make([]string, 0, len(gifts))
	for _, gift := range gifts {
		serials = append(serials, gift.SerialNumber)
	}
	c.JSON(http.StatusCreated, gin.H{"count": len(gifts), "serial_numbers": serials})
}

// serialAlphabet excludes ambiguous characters (0/O, 1/I).
const serialAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// generateSerial builds a random voucher serial like PREFIX-XXXXXXXXXX.
func generateSerial(prefix string) (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i := range buf {
		buf[i] = serialAlphabet[int(buf[i])%len(serialAlphabet)]
	}
	return prefix + "-" + string(buf), nil
}

// List returns catalog vouchers, newest first, optionally filtered by
// status.
func (h *GiftCardHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	query := h.db.WithContext(c.Request.Context()).Model(&models.GiftCard{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var gifts []models.GiftCard
	if errFind := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&gifts).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]gin.H, 0, len(gifts))
	for i := range gifts {
		items = append(items, h.formatGift(&gifts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": items})
}

// UpdateStatus edits a voucher's status. Only unclaimed vouchers can be
// changed here; claim and use transitions belong to the member API.
func (h *GiftCardHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	status := strings.TrimSpace(body.Status)
	if status != models.GiftCardStatusUnclaimed && status != models.GiftCardStatusClaimed && status != models.GiftCardStatusUsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	var gift models.GiftCard
	if errFind := h.db.WithContext(c.Request.Context()).First(&gift, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "gift card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if gift.Status != models.GiftCardStatusUnclaimed {
		c.JSON(http.StatusConflict, gin.H{"error": "only unclaimed gift cards can be edited"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&gift).Update("status", status).Error; errUpdate != nil {
		log.WithError(errUpdate).Error("gift cards: update status failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
