package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		table  string
		column string
	}{
		{
			name:   "postgres unique index",
			err:    &pgconn.PgError{Code: "23505", TableName: "customers", ConstraintName: "idx_customers_dni"},
			table:  "customers",
			column: "dni",
		},
		{
			name:   "postgres primary key",
			err:    fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", TableName: "auth_tokens", ConstraintName: "auth_tokens_pkey"}),
			table:  "auth_tokens",
			column: "key",
		},
		{
			name:   "sqlite",
			err:    errors.New("UNIQUE constraint failed: customer_users.email"),
			table:  "customer_users",
			column: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)

			var dup *DuplicateError
			if assert.ErrorAs(t, err, &dup) {
				assert.Equal(t, tt.table, dup.Table)
				assert.Equal(t, tt.column, dup.Column)
			}
			assert.True(t, IsDuplicate(err, tt.column))
			assert.False(t, IsDuplicate(err, "other"))
		})
	}
}

func TestClassify_PassesThroughOtherErrors(t *testing.T) {
	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, classify(other))
	assert.NoError(t, classify(nil))
	assert.False(t, IsDuplicate(errors.New("boom")))
}
