// Package database provides the gorm-backed object cache and its connection helpers.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

// Open connects to PostgreSQL using the configured DSN parts.
func Open(cfg ports.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{})
	if err != nil {
		return nil, errors.NewDatabaseError("failed to connect to database", err)
	}
	return db, nil
}

// DSN formats a libpq key/value connection string.
func DSN(cfg ports.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Migrate creates or updates the object cache table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&CachedObjectModel{}); err != nil {
		return errors.NewDatabaseError("failed to migrate object cache table", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.NewDatabaseError("failed to get sql database", err)
	}
	return sqlDB.Close()
}
