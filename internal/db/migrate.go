package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agorawin/loyalty-server/internal/models"
	"github.com/agorawin/loyalty-server/internal/security"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all application tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db: nil connection")
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.StampCard{},
		&models.UserStampCard{},
		&models.GiftCard{},
		&models.UserGiftCard{},
		&models.PolicyPage{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account when the admins table is
// empty. Existing admins are never modified.
func SeedAdmin(conn *gorm.DB, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	var count int64
	if err := conn.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("db: count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("db: hash bootstrap admin password: %w", errHash)
	}
	admin := models.Admin{
		Username: username,
		Password: hash,
		Active:   true,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("db: seed admin: %w", errCreate)
	}
	return nil
}
