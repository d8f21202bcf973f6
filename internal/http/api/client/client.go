package client

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/config"
	"github.com/agorawin/loyalty-server/internal/http/api/client/handlers"
	"github.com/agorawin/loyalty-server/internal/ratelimit"
	"github.com/agorawin/loyalty-server/internal/security"
	"gorm.io/gorm"
)

// RegisterClientRoutes registers the public member-facing API under /api.
func RegisterClientRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, loginLimiter *ratelimit.Limiter) {
	if r == nil || db == nil || cfg == nil {
		return
	}

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(db, cfg.JWT, cfg.Signup)
	auth := api.Group("/auth")
	auth.Use(ratelimit.Middleware(loginLimiter))
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)

	policyHandler := handlers.NewPolicyHandler(db)
	api.GET("/policy", policyHandler.Get)

	authed := api.Group("")
	authed.Use(userAuthMiddleware(cfg.JWT))

	profileHandler := handlers.NewProfileHandler(db)
	authed.GET("/users/profile", profileHandler.Get)
	authed.PUT("/users/update", profileHandler.Update)
	authed.DELETE("/users/delete", profileHandler.Delete)

	cardHandler := handlers.NewCardHandler(db)
	authed.GET("/cards", cardHandler.List)
	authed.POST("/cards/activate", cardHandler.Activate)
	authed.POST("/cards/use", cardHandler.Use)

	giftHandler := handlers.NewGiftHandler(db)
	authed.GET("/gifts", giftHandler.List)
	authed.POST("/gifts/activate", giftHandler.Activate)
	authed.POST("/gifts/use", giftHandler.Use)
}

// userAuthMiddleware validates member bearer tokens. The token carries the
// whole session identity; handlers look the user up themselves. A missing
// credential yields 401, a bad or expired one 403.
func userAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, strings.TrimSpace(token))
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userPhone", claims.Phone)
		c.Next()
	}
}
