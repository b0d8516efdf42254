package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pathakanu/reminderbot/internal/config"
	"github.com/pathakanu/reminderbot/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New creates a GORM database connection and migrates the reminder table.
// PostgreSQL is used unless the dialect is sqlite, in which case the database
// name is treated as a file path (or an in-memory DSN). GORM warnings go to l.
func New(cfg config.DatabaseConfig, l *log.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(l, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	if err := db.AutoMigrate(&model.Reminder{}); err != nil {
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	logBackend(db, cfg, l)
	return db, nil
}

// Dialector picks the GORM driver for cfg.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Dialect) {
	case "postgres", "postgresql", "":
		return postgres.Open(PostgresDSN(cfg)), nil
	case "sqlite", "sqlite3":
		name := cfg.Name
		if name == "" {
			name = "reminders.db"
		}
		return sqlite.Open(name), nil
	default:
		return nil, fmt.Errorf("database: unsupported dialect %q", cfg.Dialect)
	}
}

// PostgresDSN builds a key/value DSN unless a full URL was configured.
func PostgresDSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func logBackend(db *gorm.DB, cfg config.DatabaseConfig, l *log.Logger) {
	dialector := db.Dialector.Name()
	switch strings.ToLower(dialector) {
	case "postgres":
		l.Printf("database: connected to PostgreSQL at %s", cfg.Host)
	case "sqlite":
		l.Printf("database: using SQLite %s", cfg.Name)
	default:
		l.Printf("database: connected via %s", dialector)
	}
}
