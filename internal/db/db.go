package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sitecms/internal/model"
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Open returns a connected GORM DB instance for the given driver.
func Open(driver, mysqlDSN, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case DriverMySQL:
		return NewMySQL(mysqlDSN, cfg)
	case DriverSQLite:
		return NewSQLite(sqlitePath, cfg)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// NewSQLite opens (and creates) a SQLite database file. ":memory:" is accepted.
func NewSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// Every pooled connection to ":memory:" would get its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func models() []interface{} {
	return []interface{}{
		&model.ContentDraft{},
		&model.ContentPublished{},
		&model.BackupRecord{},
		&model.PublishHistory{},
		&model.AdminSession{},
	}
}

// Migrate creates or updates every table. With reset set, existing tables are dropped first.
func Migrate(db *gorm.DB, reset bool) error {
	if reset {
		slog.Warn("RESET_DB=true detected, dropping all tables")
		for _, table := range models() {
			if err := db.Migrator().DropTable(table); err != nil {
				slog.Warn("drop table failed (may not exist)", "error", err)
			}
		}
	}
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
