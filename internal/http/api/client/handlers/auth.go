package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/config"
	"github.com/agorawin/loyalty-server/internal/models"
	"github.com/agorawin/loyalty-server/internal/security"
	"github.com/agorawin/loyalty-server/internal/settings"
	"github.com/agorawin/loyalty-server/internal/util"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler handles member login and signup.
type AuthHandler struct {
	db        *gorm.DB
	jwtCfg    config.JWTConfig
	signupCfg config.SignupConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, signupCfg config.SignupConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, signupCfg: signupCfg}
}

// loginRequest defines the request body for member login.
type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// Login authenticates a member by phone and PIN and issues a bearer token.
// Wrong PIN and deactivated account produce the same response so callers
// cannot probe which phone numbers are registered.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone and PIN are required"})
		return
	}
	phone := strings.TrimSpace(body.Phone)
	pin := strings.TrimSpace(body.PIN)
	if phone == "" || pin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone and PIN are required"})
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("phone = ? AND is_active = ?", phone, true).
		First(&user).Error
	if errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			log.WithError(errFind).Error("login: query user failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			return
		}
		log.WithField("phone", util.MaskPhone(phone)).Debug("login: no active account for phone")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials or account inactive"})
		return
	}

	if !security.CheckPIN(user.PIN, pin) {
		log.WithField("phone", util.MaskPhone(phone)).Debug("login: pin mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials or account inactive"})
		return
	}

	token, errToken := security.GenerateUserToken(h.jwtCfg.Secret, user.ID, user.Phone, h.jwtCfg.Expiry())
	if errToken != nil {
		log.WithError(errToken).Error("login: sign token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    newUserView(user),
		"token":   token,
	})
}

// signupRequest defines the request body for member signup.
type signupRequest struct {
	Phone  string `json:"phone"`
	PIN    string `json:"pin"`
	Branch string `json:"branch"`
}

// Signup registers a new member and issues a bearer token. The PIN may be
// omitted when the random-PIN setting is on; the synthesized PIN is then
// returned once in the response.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone and PIN are required"})
		return
	}
	phone := strings.TrimSpace(body.Phone)
	pin := strings.TrimSpace(body.PIN)

	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone and PIN are required"})
		return
	}

	generatedPIN := ""
	if pin == "" {
		if !settings.Bool(settings.KeySignupRandomPIN, h.signupCfg.RandomPIN) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone and PIN are required"})
			return
		}
		random, errGen := security.GeneratePIN()
		if errGen != nil {
			log.WithError(errGen).Error("signup: generate pin failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			return
		}
		pin = random
		generatedPIN = random
	}

	// Duplicate check covers deactivated accounts too: a soft-deleted row
	// still owns its phone number.
	var existing models.User
	errCheck := h.db.WithContext(c.Request.Context()).Where("phone = ?", phone).First(&existing).Error
	if errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "User with this phone number already exists"})
		return
	}
	if !errors.Is(errCheck, gorm.ErrRecordNotFound) {
		log.WithError(errCheck).Error("signup: query user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	branch := strings.TrimSpace(body.Branch)
	if branch == "" {
		branch = settings.String(settings.KeySignupDefaultBranch, h.signupCfg.DefaultBranch)
	}

	hash, errHash := security.HashPIN(pin)
	if errHash != nil {
		log.WithError(errHash).Error("signup: hash pin failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		Phone:    phone,
		PIN:      hash,
		Branch:   branch,
		IsActive: true,
		JoinDate: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		log.WithError(errCreate).Error("signup: create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	token, errToken := security.GenerateUserToken(h.jwtCfg.Secret, user.ID, user.Phone, h.jwtCfg.Expiry())
	if errToken != nil {
		log.WithError(errToken).Error("signup: sign token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	resp := gin.H{
		"success": true,
		"user": userView{
			ID:       user.ID,
			Name:     user.Name,
			Phone:    user.Phone,
			IsActive: user.IsActive,
			JoinDate: user.JoinDate,
		},
		"token": token,
	}
	if generatedPIN != "" {
		resp["pin"] = generatedPIN
	}
	c.JSON(http.StatusCreated, resp)
}
