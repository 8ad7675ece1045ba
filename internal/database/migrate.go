package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/mealdiary/backend/internal/models"
)

// Migrate creates or updates the schema for every model the service
// persists. Called once at startup.
func Migrate(db *gorm.DB) error {
	log.Printf("Running database migrations")
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.MealLog{},
	)
}
