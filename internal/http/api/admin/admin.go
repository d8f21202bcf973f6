package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/config"
	"github.com/agorawin/loyalty-server/internal/http/api/admin/handlers"
	"github.com/agorawin/loyalty-server/internal/models"
	"github.com/agorawin/loyalty-server/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the management API under /api/admin.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	if r == nil || db == nil || cfg == nil {
		return
	}

	api := r.Group("/api/admin")

	authHandler := handlers.NewAuthHandler(db, cfg.JWT)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/login/totp", authHandler.LoginTOTP)

	authed := api.Group("")
	authed.Use(adminAuthMiddleware(db, cfg.JWT))

	mfaHandler := handlers.NewMFAHandler(db)
	authed.GET("/mfa/status", mfaHandler.Status)
	authed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	authed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	authed.DELETE("/mfa/totp", mfaHandler.DisableTOTP)

	stampHandler := handlers.NewStampCardHandler(db)
	authed.POST("/stamp-cards", stampHandler.Create)
	authed.GET("/stamp-cards", stampHandler.List)
	authed.PUT("/stamp-cards/:id/status", stampHandler.UpdateStatus)

	giftHandler := handlers.NewGiftCardHandler(db)
	authed.POST("/gift-cards", giftHandler.Create)
	authed.POST("/gift-cards/batch", giftHandler.BatchCreate)
	authed.GET("/gift-cards", giftHandler.List)
	authed.PUT("/gift-cards/:id/status", giftHandler.UpdateStatus)

	policyHandler := handlers.NewPolicyPageHandler(db)
	authed.GET("/policy-pages", policyHandler.List)
	authed.PUT("/policy-pages/:slug", policyHandler.Upsert)

	userHandler := handlers.NewUserAdminHandler(db)
	authed.GET("/users", userHandler.List)
	authed.PUT("/users/:id/active", userHandler.SetActive)

	settingHandler := handlers.NewSettingHandler(db)
	authed.GET("/settings", settingHandler.List)
	authed.PUT("/settings/:key", settingHandler.Update)
}

// adminAuthMiddleware validates admin bearer tokens and checks the account
// is still active on every request, so a disabled admin loses access
// immediately rather than at token expiry.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, strings.TrimSpace(token))
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin account is disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Next()
	}
}
