package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/models"
	"github.com/agorawin/loyalty-server/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProfileHandler handles member profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			// A valid token for a vanished row; should not happen outside
			// of manual data surgery.
			log.WithField("user_id", userID).Error("profile: user row missing for valid token")
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		log.WithError(errFind).Error("profile: query user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": newUserView(user)})
}

// updateRequest defines the request body for profile updates. PIN rotation
// and name/email updates are mutually exclusive modes: when both PIN fields
// are present the other fields are ignored.
type updateRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	CurrentPIN string `json:"current_pin"`
	NewPIN     string `json:"new_pin"`
}

// Update applies a PIN rotation or a name/email change.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var body updateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	currentPIN := strings.TrimSpace(body.CurrentPIN)
	newPIN := strings.TrimSpace(body.NewPIN)
	if currentPIN != "" && newPIN != "" {
		h.rotatePIN(c, userID, currentPIN, newPIN)
		return
	}

	name := strings.TrimSpace(body.Name)
	email := strings.TrimSpace(body.Email)
	if name == "" && email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No fields to update"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		updates["email"] = email
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error; errUpdate != nil {
		log.WithError(errUpdate).Error("profile: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		log.WithError(errFind).Error("profile: reload user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    newUserView(user),
		"message": "Profile updated successfully",
	})
}

// rotatePIN verifies the current PIN and stores a new one. The bearer token
// stays valid; only the shared secret changes.
func (h *ProfileHandler) rotatePIN(c *gin.Context, userID uint64, currentPIN, newPIN string) {
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		log.WithError(errFind).Error("profile: query user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	if !security.CheckPIN(user.PIN, currentPIN) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Current PIN is incorrect"})
		return
	}

	hash, errHash := security.HashPIN(newPIN)
	if errHash != nil {
		log.WithError(errHash).Error("profile: hash pin failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&user).Updates(map[string]any{
		"pin":        hash,
		"updated_at": time.Now().UTC(),
	}).Error; errUpdate != nil {
		log.WithError(errUpdate).Error("profile: update pin failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "PIN updated successfully"})
}

// Delete soft-deletes the caller's account by clearing the active flag. The
// row is retained and the phone number stays reserved.
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error; errUpdate != nil {
		log.WithError(errUpdate).Error("profile: deactivate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deactivated successfully"})
}
