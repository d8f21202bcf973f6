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

// PolicyPageHandler handles admin maintenance of public content pages.
type PolicyPageHandler struct {
	db *gorm.DB
}

// NewPolicyPageHandler constructs a PolicyPageHandler.
func NewPolicyPageHandler(db *gorm.DB) *PolicyPageHandler {
	return &PolicyPageHandler{db: db}
}

// upsertPolicyPageRequest captures a page create-or-update payload.
type upsertPolicyPageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Upsert creates or replaces the page identified by the :slug param.
func (h *PolicyPageHandler) Upsert(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing slug"})
		return
	}

	var body upsertPolicyPageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}

	var page models.PolicyPage
	errFind := h.db.WithContext(c.Request.Context()).Where("slug = ?", slug).First(&page).Error
	switch {
	case errFind == nil:
		if errUpdate := h.db.WithContext(c.Request.Context()).Model(&page).Updates(map[string]any{
			"title":      title,
			"content":    body.Content,
			"updated_at": time.Now().UTC(),
		}).Error; errUpdate != nil {
			log.WithError(errUpdate).Error("policy pages: update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		page = models.PolicyPage{
			Slug:    slug,
			Title:   title,
			Content: body.Content,
		}
		if errCreate := h.db.WithContext(c.Request.Context()).Create(&page).Error; errCreate != nil {
			log.WithError(errCreate).Error("policy pages: create failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	default:
		log.WithError(errFind).Error("policy pages: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
	}
}

// List returns all policy pages.
func (h *PolicyPageHandler) List(c *gin.Context) {
	var pages []models.PolicyPage
	if errFind := h.db.WithContext(c.Request.Context()).Order("slug ASC").Find(&pages).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]gin.H, 0, len(pages))
	for _, page := range pages {
		items = append(items, gin.H{
			"id":         page.ID,
			"slug":       page.Slug,
			"title":      page.Title,
			"content":    page.Content,
			"created_at": page.CreatedAt,
			"updated_at": page.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
