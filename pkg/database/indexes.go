package database

import (
	"fmt"

	"gorm.io/gorm"
)

// listIndexes back the customer list filters and its default ordering.
// The statements are valid on both PostgreSQL and SQLite.
var listIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_customers_created_at_id ON customers(created_at, id)",
	"CREATE INDEX IF NOT EXISTS idx_customers_birth_date ON customers(birth_date)",
	"CREATE INDEX IF NOT EXISTS idx_customers_sex_tape ON customers(sex_tape)",
	"CREATE INDEX IF NOT EXISTS idx_customer_users_name ON customer_users(name)",
	"CREATE INDEX IF NOT EXISTS idx_customer_users_last_name ON customer_users(last_name)",
}

// EnsureIndexes creates the secondary indexes used by the list endpoint.
func EnsureIndexes(db *gorm.DB) error {
	for _, stmt := range listIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
