package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

// Queries are the point reads available both inside and outside a
// transaction.  Lookups by key return ErrNotFound when the row is missing.
type Queries interface {
	ReservationByID(ctx context.Context, id int64) (*model.Reservation, error)
	RoomByKey(ctx context.Context, key model.RoomKey) (*model.Room, error)
	CustomerByID(ctx context.Context, id int64) (*model.Customer, error)
	TransactionsByReservation(ctx context.Context, reservationID int64) ([]model.Transaction, error)
}

// Tx is the unit of work handed to Store.InTx.  Lock* methods take row
// locks that are held until the transaction ends.
type Tx interface {
	Queries

	// LockRoom locks the room row.  Every reservation write locks its room
	// first so that writers for the same room serialize.
	LockRoom(ctx context.Context, key model.RoomKey) (*model.Room, error)
	LockReservation(ctx context.Context, id int64) (*model.Reservation, error)
	// OverlappingReservations lists reservations of the room whose nights
	// intersect span.  excludeID (0 = none) is left out of the result.
	OverlappingReservations(ctx context.Context, key model.RoomKey, span interval.Span, excludeID int64) ([]model.Reservation, error)
	InsertReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id int64) error

	// FirstAvailableStaff returns the lowest-id unassigned staff member of
	// the hotel holding title, skipping rows locked by other transactions.
	// It returns nil without error when nobody is available.
	FirstAvailableStaff(ctx context.Context, hotelID int64, title string) (*model.Staff, error)
	LockStaff(ctx context.Context, id int64) (*model.Staff, error)
	StaffAssignedTo(ctx context.Context, key model.RoomKey) ([]model.Staff, error)
	AssignStaff(ctx context.Context, staffID int64, key model.RoomKey) error
	ClearStaffAssignment(ctx context.Context, staffID int64) error
	// InsertServes records the interaction; recording it twice is a no-op.
	InsertServes(ctx context.Context, s model.Serves) error

	InsertTransaction(ctx context.Context, t *model.Transaction) error
}

// ReportReader serves the read-only aggregates of the reporting engine.
type ReportReader interface {
	Hotels(ctx context.Context) ([]model.Hotel, error)
	// RoomLocations lists rooms joined with hotel and city/state, ordered
	// by hotel id then room number.  hotelID 0 means every hotel.
	RoomLocations(ctx context.Context, hotelID int64) ([]model.RoomLocation, error)
	ReservationsOverlapping(ctx context.Context, span interval.Span) ([]model.Reservation, error)
	// HotelTransactions returns transactions dated in [from, to).
	HotelTransactions(ctx context.Context, from, to time.Time) ([]model.HotelTransaction, error)
}

// Store is the storage gateway of the engines.
type Store interface {
	Queries
	ReportReader

	Ping(ctx context.Context) error
	// InTx runs fn in one transaction.  The transaction commits when fn
	// returns nil and rolls back on error or panic.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// SQLStore implements Store on MySQL or PostgreSQL through sqlx.  Queries
// are written with '?' placeholders and rebound for the active driver.
type SQLStore struct {
	sqlQueries
	db *sqlx.DB
}

// NewSQLStore returns a Store bound to db.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{sqlQueries: sqlQueries{x: db}, db: db}
}

// Ping verifies the connection.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// InTx implements Store.
func (s *SQLStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&sqlTx{sqlQueries{x: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	committed = true
	return nil
}

// sqlQueries runs statements on either the pool or an open transaction.
type sqlQueries struct {
	x sqlx.ExtContext
}

func (q sqlQueries) postgres() bool { return q.x.DriverName() == "postgres" }

func (q sqlQueries) get(ctx context.Context, dest any, query string, args ...any) error {
	return classify(sqlx.GetContext(ctx, q.x, dest, q.x.Rebind(query), args...))
}

func (q sqlQueries) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return classify(sqlx.SelectContext(ctx, q.x, dest, q.x.Rebind(query), args...))
}

// exec runs a write and returns the affected row count.
func (q sqlQueries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.x.ExecContext(ctx, q.x.Rebind(query), args...)
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// insertID runs an INSERT into a table with a generated id column and
// returns the new id: LastInsertId on MySQL, RETURNING id on PostgreSQL.
func (q sqlQueries) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	if q.postgres() {
		var id int64
		if err := q.x.QueryRowxContext(ctx, q.x.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, classify(err)
		}
		return id, nil
	}
	res, err := q.x.ExecContext(ctx, q.x.Rebind(query), args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.LastInsertId()
}

// sqlTx adds the transaction-only writes and locks.
type sqlTx struct {
	sqlQueries
}
