package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/config"
	"github.com/agorawin/loyalty-server/internal/security"
)

func newProtectedRouter(jwtCfg config.JWTConfig) *gin.Engine {
	r := gin.New()
	authed := r.Group("/api")
	authed.Use(userAuthMiddleware(jwtCfg))
	authed.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint64("userID")})
	})
	return r
}

func TestUserAuthMiddlewareMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newProtectedRouter(config.JWTConfig{Secret: "test-secret"})

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestUserAuthMiddlewareMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newProtectedRouter(config.JWTConfig{Secret: "test-secret"})

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer header, got %d", w.Code)
	}
}

func TestUserAuthMiddlewareInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newProtectedRouter(config.JWTConfig{Secret: "test-secret"})

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid token, got %d", w.Code)
	}
}

func TestUserAuthMiddlewareExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newProtectedRouter(config.JWTConfig{Secret: "test-secret"})

	token, errGen := security.GenerateUserToken("test-secret", 5, "0501234567", -time.Minute)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d", w.Code)
	}
}

func TestUserAuthMiddlewareValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newProtectedRouter(config.JWTConfig{Secret: "test-secret"})

	token, errGen := security.GenerateUserToken("test-secret", 5, "0501234567", time.Hour)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d body=%s", w.Code, w.Body.String())
	}
}
