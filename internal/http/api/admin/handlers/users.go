package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserAdminHandler handles admin views of member accounts.
type UserAdminHandler struct {
	db *gorm.DB
}

// NewUserAdminHandler constructs a UserAdminHandler.
func NewUserAdminHandler(db *gorm.DB) *UserAdminHandler {
	return &UserAdminHandler{db: db}
}

// List returns members, newest first, optionally filtered by phone prefix.
func (h *UserAdminHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	query := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if phone := strings.TrimSpace(c.Query("phone")); phone != "" {
		query = query.Where("phone LIKE ?", phone+"%")
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var users []models.User
	if errFind := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, gin.H{
			"id":         user.ID,
			"phone":      user.Phone,
			"name":       user.Name,
			"email":      user.Email,
			"branch":     user.Branch,
			"is_active":  user.IsActive,
			"join_date":  user.JoinDate,
			"created_at": user.CreatedAt,
			"updated_at": user.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": items})
}

// setActiveRequest captures an account activation change.
type setActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive reactivates or deactivates a member account. This is the only
// way to restore an account after self-service deletion.
func (h *UserAdminHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body setActiveRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing active"})
		return
	}

	result := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  *body.Active,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		log.WithError(result.Error).Error("admin users: set active failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
