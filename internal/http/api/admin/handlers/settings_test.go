package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/agorawin/loyalty-server/internal/models"
	"github.com/agorawin/loyalty-server/internal/settings"
	"gorm.io/gorm"
)

func setupSettingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:admin_settings_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Setting{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	settings.Store(time.Time{}, nil)
	return db
}

func TestSettingUpdateAndSnapshotRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupSettingTestDB(t)

	h := NewSettingHandler(db)
	params := gin.Params{{Key: "key", Value: settings.KeySignupDefaultBranch}}
	w := adminJSONRequest(t, h.Update, http.MethodPut, "/api/admin/settings/signup.default-branch", `"09"`, params)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var row models.Setting
	if errFind := db.Where("key = ?", settings.KeySignupDefaultBranch).First(&row).Error; errFind != nil {
		t.Fatalf("find setting row: %v", errFind)
	}
	if string(row.Value) != `"09"` {
		t.Fatalf("expected stored value \"09\", got %s", string(row.Value))
	}

	// Snapshot reflects the change without a restart.
	if got := settings.String(settings.KeySignupDefaultBranch, "01"); got != "09" {
		t.Fatalf("expected refreshed snapshot 09, got %q", got)
	}
}

func TestSettingUpdateOverwritesExistingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupSettingTestDB(t)

	h := NewSettingHandler(db)
	params := gin.Params{{Key: "key", Value: settings.KeySignupRandomPIN}}
	first := adminJSONRequest(t, h.Update, http.MethodPut, "/api/admin/settings/signup.random-pin", `true`, params)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", first.Code, first.Body.String())
	}
	second := adminJSONRequest(t, h.Update, http.MethodPut, "/api/admin/settings/signup.random-pin", `false`, params)
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", second.Code, second.Body.String())
	}

	var count int64
	if errCount := db.Model(&models.Setting{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count settings: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected single row after overwrite, got %d", count)
	}
	if got := settings.Bool(settings.KeySignupRandomPIN, true); got {
		t.Fatalf("expected snapshot false after overwrite")
	}
}

func TestSettingUpdateRejectsUnknownKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupSettingTestDB(t)

	h := NewSettingHandler(db)
	params := gin.Params{{Key: "key", Value: "signup.unknown"}}
	w := adminJSONRequest(t, h.Update, http.MethodPut, "/api/admin/settings/signup.unknown", `true`, params)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestSettingUpdateRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupSettingTestDB(t)

	h := NewSettingHandler(db)
	params := gin.Params{{Key: "key", Value: settings.KeySignupRandomPIN}}
	w := adminJSONRequest(t, h.Update, http.MethodPut, "/api/admin/settings/signup.random-pin", `{not json`, params)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestSettingListReportsAllKnownKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupSettingTestDB(t)

	h := NewSettingHandler(db)
	params := gin.Params{{Key: "key", Value: settings.KeySignupDefaultBranch}}
	if w := adminJSONRequest(t, h.Update, http.MethodPut, "/api/admin/settings/signup.default-branch", `"02"`, params); w.Code != http.StatusOK {
		t.Fatalf("seed setting: %d body=%s", w.Code, w.Body.String())
	}

	w := adminJSONRequest(t, h.List, http.MethodGet, "/api/admin/settings", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []struct {
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
		} `json:"items"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Items) != len(settings.KnownKeys) {
		t.Fatalf("expected %d items, got %d", len(settings.KnownKeys), len(resp.Items))
	}

	found := false
	for _, item := range resp.Items {
		if item.Key == settings.KeySignupDefaultBranch {
			found = true
			if string(item.Value) != `"02"` {
				t.Fatalf("expected stored value for branch key, got %s", string(item.Value))
			}
		}
	}
	if !found {
		t.Fatalf("expected branch key in listing")
	}
}
