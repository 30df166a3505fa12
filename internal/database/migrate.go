package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

func Migrate(db *gorm.DB) error {
	zap.L().Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.ListingImage{},
		&models.ModerationEntry{},
		&models.Offer{},
		&models.Payment{},
		&models.Dispute{},
		&models.Rating{},
		&models.SavedSearch{},
		&models.Notification{},
		&models.Message{},
		&models.CartItem{},
	)
	if err != nil {
		zap.L().Error("Error migrating database", zap.Error(err))
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	zap.L().Info("Database migration completed successfully")
	return nil
}
