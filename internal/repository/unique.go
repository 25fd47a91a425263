package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// DuplicateError reports a unique constraint violation raised by the store.
type DuplicateError struct {
	Table  string
	Column string
	Err    error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s.%s: %v", e.Table, e.Column, e.Err)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is a unique violation, optionally on the
// given column.
func IsDuplicate(err error, column ...string) bool {
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		return false
	}
	if len(column) == 0 {
		return true
	}
	for _, c := range column {
		if dup.Column == c {
			return true
		}
	}
	return false
}

// classify turns driver unique violations into *DuplicateError and leaves
// every other error untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateError{
			Table:  pgErr.TableName,
			Column: columnFromConstraint(pgErr.TableName, pgErr.ConstraintName),
			Err:    err,
		}
	}

	// sqlite: "UNIQUE constraint failed: customers.dni"
	const sqlitePrefix = "UNIQUE constraint failed: "
	if msg := err.Error(); strings.Contains(msg, sqlitePrefix) {
		target := msg[strings.Index(msg, sqlitePrefix)+len(sqlitePrefix):]
		// composite constraints list several columns; the first one is enough
		target = strings.SplitN(target, ",", 2)[0]
		table, column, _ := strings.Cut(strings.TrimSpace(target), ".")
		return &DuplicateError{Table: table, Column: column, Err: err}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateError{Err: err}
	}

	return err
}

// columnFromConstraint resolves gorm's index naming (idx_<table>_<column>)
// and the primary key constraint (<table>_pkey).
func columnFromConstraint(table, constraint string) string {
	if prefix := "idx_" + table + "_"; strings.HasPrefix(constraint, prefix) {
		return strings.TrimPrefix(constraint, prefix)
	}
	if constraint == table+"_pkey" {
		return primaryKeyColumns[table]
	}
	return constraint
}

var primaryKeyColumns = map[string]string{
	"auth_tokens": "key",
}
