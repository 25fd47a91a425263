package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a SQLite database. Foreign keys are switched on so that
// cascading deletes behave as on PostgreSQL.
func NewSQLiteDB(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "customer.db"
	}
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=1"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// sqlite serialises writers anyway
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
