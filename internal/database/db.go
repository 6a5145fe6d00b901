package database

import (
	"fmt"
	"time"

	"tabletap/internal/config"
	"tabletap/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB(cfg config.DatabaseConfig) error {
	var err error
	switch cfg.Dialect {
	case "sqlite3":
		DB, err = gorm.Open("sqlite3", cfg.Path)
	case "postgres":
		DB, err = gorm.Open("postgres", cfg.DSN)
	default:
		return fmt.Errorf("unsupported database dialect %q", cfg.Dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	DB.DB().SetMaxIdleConns(cfg.MaxIdleConns)
	DB.DB().SetMaxOpenConns(cfg.MaxOpenConns)
	DB.DB().SetConnMaxLifetime(time.Hour)

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Migrate creates and updates all required tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.Menu{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
	).Error
}

// Transact runs fn inside a transaction, rolling back on error or panic.
func Transact(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
