// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"testing"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite creates an in-memory SQLite database with every table migrated.
// The pool is pinned to one connection so all queries see the same database.
func OpenSQLite(t *testing.T, extra ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	tables := []interface{}{
		&models.User{},
		&models.MoodEvent{},
		&models.FollowRequest{},
		&models.Follow{},
		&models.Comment{},
	}
	if err := db.AutoMigrate(append(tables, extra...)...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
