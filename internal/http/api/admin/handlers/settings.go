package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/models"
	"github.com/agorawin/loyalty-server/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingHandler manages runtime-tunable settings persisted in the database.
type SettingHandler struct {
	db *gorm.DB
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

// List returns the current value for every known setting key. Keys that were
// never written are reported with a null value.
func (h *SettingHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	stored := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		stored[row.Key] = json.RawMessage(row.Value)
	}

	items := make([]gin.H, 0, len(settings.KnownKeys))
	for _, key := range settings.KnownKeys {
		value, ok := stored[key]
		if !ok {
			value = json.RawMessage("null")
		}
		items = append(items, gin.H{"key": key, "value": value})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Update writes a setting value and refreshes the in-memory snapshot so the
// change takes effect without a restart.
func (h *SettingHandler) Update(c *gin.Context) {
	key := c.Param("key")
	if !settings.IsKnownKey(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown setting"})
		return
	}

	raw, errRead := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if errRead != nil || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be valid JSON"})
		return
	}

	row := models.Setting{Key: key, Value: datatypes.JSON(raw)}
	errSave := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if errSave != nil {
		log.WithError(errSave).Error("admin settings: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if errRefresh := settings.Refresh(c.Request.Context(), h.db); errRefresh != nil {
		log.WithError(errRefresh).Warn("admin settings: snapshot refresh failed")
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": json.RawMessage(raw)})
}
