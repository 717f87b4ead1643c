// Package repository defines error types that are reused across the
// stores and the table gateway.  Driver errors are classified into these
// sentinels so that higher layers such as the engines and the handlers can
// tell constraint failures apart from infrastructure failures without
// knowing which database is in use.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a row addressed by key does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write collides with existing state: a
// duplicate key, a unique column, or (PostgreSQL) the reservation range
// exclusion constraint.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForeignKey is returned when a write references a missing row or a
// delete is restricted by dependent rows.
var ErrForeignKey = errors.New("foreign key violation")

// ErrCheck is returned when a row violates a CHECK constraint.
var ErrCheck = errors.New("check constraint violation")

// ErrInvalidTable and ErrInvalidColumn are returned by the Gateway when the
// caller names a table or column outside the whitelist.
var (
	ErrInvalidTable  = errors.New("unknown table")
	ErrInvalidColumn = errors.New("unknown column")
	ErrEmptyFilter   = errors.New("filter must not be empty")
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow2 = 1216
	mysqlCheckViolated    = 3819
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation    = "23505"
	pgForeignKey         = "23503"
	pgCheckViolation     = "23514"
	pgExclusionViolation = "23P01"
)

// classify maps driver errors onto the package sentinels.  The original
// error stays in the chain so logs keep the driver message.  sql.ErrNoRows
// becomes ErrNotFound; anything unrecognised is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferenced2, mysqlNoReferencedRow2:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case mysqlCheckViolated:
			return fmt.Errorf("%w: %w", ErrCheck, err)
		}
		return err
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		switch string(pe.Code) {
		case pgUniqueViolation, pgExclusionViolation:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case pgForeignKey:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case pgCheckViolation:
			return fmt.Errorf("%w: %w", ErrCheck, err)
		}
	}
	return err
}

// IsConstraint reports whether err is one of the constraint sentinels.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrForeignKey) || errors.Is(err, ErrCheck)
}
