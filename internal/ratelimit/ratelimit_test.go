package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAllowLocalExhaustsBurst(t *testing.T) {
	l := New(nil, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "10.0.0.1") {
			t.Fatalf("expected attempt %d to be allowed", i+1)
		}
	}
	if l.Allow(ctx, "10.0.0.1") {
		t.Fatalf("expected attempt over burst to be denied")
	}
}

func TestAllowLocalKeysAreIndependent(t *testing.T) {
	l := New(nil, 1)
	ctx := context.Background()

	if !l.Allow(ctx, "10.0.0.1") {
		t.Fatalf("expected first key allowed")
	}
	if l.Allow(ctx, "10.0.0.1") {
		t.Fatalf("expected first key throttled")
	}
	if !l.Allow(ctx, "10.0.0.2") {
		t.Fatalf("expected second key unaffected")
	}
}

func TestNewDefaultsPerMinute(t *testing.T) {
	l := New(nil, 0)
	if l.perMinute != 10 {
		t.Fatalf("expected default 10 per minute, got %d", l.perMinute)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(nil, 2)

	r := gin.New()
	r.POST("/api/auth/login", Middleware(l), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected request %d to pass, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over limit, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestMiddlewareNilLimiterPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/api/auth/login", Middleware(nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}
