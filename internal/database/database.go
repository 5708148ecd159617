package database

import (
	"database/sql"
	"fmt"

	"domain-check/internal/config"
	"domain-check/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var DB *gorm.DB

// InitDB initializes the database connection used for settings overrides and
// notification history. Domain records live in the JSON file store, not here.
func InitDB(cfg *config.DatabaseConfig) error {
	switch cfg.Type {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite", cfg.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		DB, err = gorm.Open(sqlite.Dialector{
			Conn: sqlDB,
		}, &gorm.Config{})
		if err != nil {
			return fmt.Errorf("failed to initialize GORM: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err := DB.AutoMigrate(
		&models.Setting{},
		&models.Notification{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
