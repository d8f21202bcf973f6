package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PolicyHandler serves public content pages.
type PolicyHandler struct {
	db *gorm.DB
}

// NewPolicyHandler constructs a PolicyHandler.
func NewPolicyHandler(db *gorm.DB) *PolicyHandler {
	return &PolicyHandler{db: db}
}

// Get returns a policy page by slug. No authentication required.
func (h *PolicyHandler) Get(c *gin.Context) {
	slug := strings.TrimSpace(c.Query("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Slug is required"})
		return
	}

	var page models.PolicyPage
	if errFind := h.db.WithContext(c.Request.Context()).Where("slug = ?", slug).First(&page).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Page not found"})
			return
		}
		log.WithError(errFind).Error("policy: query page failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"page": gin.H{
			"id":         page.ID,
			"slug":       page.Slug,
			"title":      page.Title,
			"content":    page.Content,
			"created_at": page.CreatedAt,
			"updated_at": page.UpdatedAt,
		},
	})
}
