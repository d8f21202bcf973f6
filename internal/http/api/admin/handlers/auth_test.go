package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/pquerna/otp/totp"
	"github.com/agorawin/loyalty-server/internal/config"
	"github.com/agorawin/loyalty-server/internal/models"
	"github.com/agorawin/loyalty-server/internal/security"
	"gorm.io/gorm"
)

func setupAdminAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:admin_auth_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Admin{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func createTestAdmin(t *testing.T, db *gorm.DB, username, password, totpSecret string, active bool) models.Admin {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	admin := models.Admin{
		Username:   username,
		Password:   hash,
		Active:     active,
		TOTPSecret: totpSecret,
	}
	if errCreate := db.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}
	return admin
}

func adminJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", ExpiryHours: 1}
}

func TestAdminLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupAdminAuthTestDB(t)
	admin := createTestAdmin(t, db, "root", "changeme", "", true)

	h := NewAuthHandler(db, adminJWTConfig())
	w := adminJSONRequest(t, h.Login, http.MethodPost, "/api/admin/auth/login",
		`{"username":"root","password":"changeme"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		Admin struct {
			ID uint64 `json:"id"`
		} `json:"admin"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if resp.Admin.ID != admin.ID {
		t.Fatalf("expected admin id %d, got %d", admin.ID, resp.Admin.ID)
	}

	claims, errParse := security.ParseAdminToken("test-secret", resp.Token)
	if errParse != nil {
		t.Fatalf("parse issued token: %v", errParse)
	}
	if claims.AdminID != admin.ID || claims.Username != "root" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAdminLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupAdminAuthTestDB(t)
	createTestAdmin(t, db, "root", "changeme", "", true)

	h := NewAuthHandler(db, adminJWTConfig())
	w := adminJSONRequest(t, h.Login, http.MethodPost, "/api/admin/auth/login",
		`{"username":"root","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminLoginDisabledAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupAdminAuthTestDB(t)
	createTestAdmin(t, db, "root", "changeme", "", false)

	h := NewAuthHandler(db, adminJWTConfig())
	w := adminJSONRequest(t, h.Login, http.MethodPost, "/api/admin/auth/login",
		`{"username":"root","password":"changeme"}`, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminLoginRequiresTOTPWhenEnrolled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupAdminAuthTestDB(t)

	key, errKey := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: "root"})
	if errKey != nil {
		t.Fatalf("generate totp key: %v", errKey)
	}
	createTestAdmin(t, db, "root", "changeme", key.Secret(), true)

	h := NewAuthHandler(db, adminJWTConfig())
	w := adminJSONRequest(t, h.Login, http.MethodPost, "/api/admin/auth/login",
		`{"username":"root","password":"changeme"}`, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 mfa_required, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		MFARequired bool `json:"mfa_required"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if !resp.MFARequired {
		t.Fatalf("expected mfa_required flag, got %s", w.Body.String())
	}
}

func TestAdminLoginTOTPWithValidCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupAdminAuthTestDB(t)

	key, errKey := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: "root"})
	if errKey != nil {
		t.Fatalf("generate totp key: %v", errKey)
	}
	createTestAdmin(t, db, "root", "changeme", key.Secret(), true)

	code, errCode := totp.GenerateCode(key.Secret(), time.Now())
	if errCode != nil {
		t.Fatalf("generate totp code: %v", errCode)
	}

	h := NewAuthHandler(db, adminJWTConfig())
	w := adminJSONRequest(t, h.LoginTOTP, http.MethodPost, "/api/admin/auth/login/totp",
		fmt.Sprintf(`{"username":"root","password":"changeme","code":"%s"}`, code), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminLoginTOTPWithBadCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupAdminAuthTestDB(t)

	key, errKey := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: "root"})
	if errKey != nil {
		t.Fatalf("generate totp key: %v", errKey)
	}
	createTestAdmin(t, db, "root", "changeme", key.Secret(), true)

	h := NewAuthHandler(db, adminJWTConfig())
	w := adminJSONRequest(t, h.LoginTOTP, http.MethodPost, "/api/admin/auth/login/totp",
		`{"username":"root","password":"changeme","code":"000000"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}
