// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sitecms/internal/db"
)

// NewTestDB returns a migrated in-memory SQLite database closed at test cleanup.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewSQLite(":memory:", &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}
