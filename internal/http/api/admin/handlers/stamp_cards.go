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

// StampCardHandler handles admin operations on the stamp card catalog.
type StampCardHandler struct {
	db *gorm.DB
}

// NewStampCardHandler constructs a StampCardHandler.
func NewStampCardHandler(db *gorm.DB) *StampCardHandler {
	return &StampCardHandler{db: db}
}

// createStampCardRequest captures the payload for creating a catalog card.
type createStampCardRequest struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	TotalStamps  int    `json:"total_stamps"`
	Status       string `json:"status"`
}

// formatCard maps a catalog row to its admin payload.
func (h *StampCardHandler) formatCard(card *models.StampCard) gin.H {
	return gin.H{
		"id":            card.ID,
		"name":          card.Name,
		"serial_number": card.SerialNumber,
		"description":   card.Description,
		"image_url":     card.ImageURL,
		"total_stamps":  card.TotalStamps,
		"status":        card.Status,
		"created_at":    card.CreatedAt,
	}
}

// Create validates input and persists a new catalog stamp card.
func (h *StampCardHandler) Create(c *gin.Context) {
	var body createStampCardRequest
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
	if body.TotalStamps <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total_stamps must be positive"})
		return
	}
	status := strings.TrimSpace(body.Status)
	if status == "" {
		status = models.StampCardStatusActive
	}
	if status != models.StampCardStatusActive && status != models.StampCardStatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
		return
	}

	var existing models.StampCard
	if errCheck := h.db.WithContext(c.Request.Context()).Where("serial_number = ?", serial).First(&existing).Error; errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "serial_number already exists"})
		return
	} else if !errors.Is(errCheck, gorm.ErrRecordNotFound) {
		log.WithError(errCheck).Error("stamp cards: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	card := models.StampCard{
		Name:         name,
		SerialNumber: serial,
		Description:  strings.TrimSpace(body.Description),
		ImageURL:     strings.TrimSpace(body.ImageURL),
		TotalStamps:  body.TotalStamps,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&card).Error; errCreate != nil {
		log.WithError(errCreate).Error("stamp cards: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create stamp card failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatCard(&card))
}

// List returns catalog stamp cards, newest first.
func (h *StampCardHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	query := h.db.WithContext(c.Request.Context()).Model(&models.StampCard{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var cards []models.StampCard
	if errFind := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&cards).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]gin.H, 0, len(cards))
	for i := range cards {
		items = append(items, h.formatCard(&cards[i]))
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": items})
}

// updateStatusRequest captures a status change payload.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus toggles a catalog card between active and inactive. Ownership
// rows are untouched: deactivation only blocks new activations.
func (h *StampCardHandler) UpdateStatus(c *gin.Context) {
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
	if status != models.StampCardStatusActive && status != models.StampCardStatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
		return
	}

	result := h.db.WithContext(c.Request.Context()).Model(&models.StampCard{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		log.WithError(result.Error).Error("stamp cards: update status failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "stamp card not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
