package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

// ValidationError reports a malformed or out-of-range input field.  Nothing
// has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// ConflictError reports a write that collides with existing state, such as
// an overlapping reservation or a duplicate unique key.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) Unwrap() error { return e.Err }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.Key) }

// StorageError wraps an underlying store failure.  The enclosing
// transaction has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

func notFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

func typed(err error) bool {
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		se *StorageError
	)
	return errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &ne) || errors.As(err, &se)
}

// wrapStore converts a repository error into one of the typed errors.
// Errors that are already typed pass through unchanged.
func wrapStore(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case typed(err):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return &NotFoundError{Entity: "row", Key: op}
	case errors.Is(err, repository.ErrConflict):
		return &ConflictError{Message: op + ": conflicts with existing data", Err: err}
	case errors.Is(err, repository.ErrForeignKey):
		return &NotFoundError{Entity: "referenced row", Key: "for " + op}
	case errors.Is(err, repository.ErrCheck):
		return &ValidationError{Message: op + ": row violates a table constraint"}
	default:
		return &StorageError{Op: op, Err: err}
	}
}

// lookup maps ErrNotFound from a keyed read onto a NotFoundError for the
// named entity.
func lookup(entity string, key any, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(entity, key)
	}
	return wrapStore("load "+entity, err)
}

// ParseDate parses a YYYY-MM-DD request field.
func ParseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, invalid(field, "is required")
	}
	t, err := interval.ParseDate(s)
	if err != nil {
		return time.Time{}, invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	interval.DateLayout,
}

// ParseDateTime parses a check-in/check-out time.  RFC 3339 and the
// "YYYY-MM-DD HH:MM:SS" form are accepted; zone-less values are UTC.
func ParseDateTime(field, s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid(field, "must be a datetime such as 2006-01-02 15:04:05 or RFC 3339")
}
