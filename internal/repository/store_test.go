package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

var (
	roomCols        = []string{"hotel_id", "room_number", "category", "occupancy", "nightly_rate_cents"}
	reservationCols = []string{"id", "number_of_guests", "start_date", "end_date", "check_in_time",
		"check_out_time", "hotel_id", "room_number", "customer_id"}
	staffCols = []string{"id", "name", "title", "date_of_birth", "department", "phone_number", "street",
		"zip", "works_for_hotel_id", "assigned_hotel_id", "assigned_room_number"}
)

func newMockStore(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, driver)), mock
}

func day(s string) time.Time {
	t, err := interval.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSQLStore_InTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rooms WHERE hotel_id = \\? AND room_number = \\? FOR UPDATE").
			WithArgs(1, 101).
			WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, 101, "Deluxe", 2, 12000))
		mock.ExpectCommit()

		var got *model.Room
		err := store.InTx(ctx, func(tx Tx) error {
			var err error
			got, err = tx.LockRoom(ctx, model.RoomKey{HotelID: 1, RoomNumber: 101})
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, "Deluxe", got.Category)
		assert.Equal(t, int64(12000), got.NightlyRateCents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback On Error", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rooms").
			WithArgs(1, 999).
			WillReturnRows(sqlmock.NewRows(roomCols))
		mock.ExpectRollback()

		err := store.InTx(ctx, func(tx Tx) error {
			_, err := tx.LockRoom(ctx, model.RoomKey{HotelID: 1, RoomNumber: 999})
			return err
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback On Panic", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = store.InTx(ctx, func(tx Tx) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLTx_Reservations(t *testing.T) {
	ctx := context.Background()
	span := interval.Span{Start: day("2024-03-01"), End: day("2024-03-05")}

	t.Run("Overlapping Uses Half Open Rule", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectQuery("FROM reservations WHERE hotel_id = \\? AND room_number = \\? AND start_date < \\? AND \\? < end_date AND id <> \\?").
			WithArgs(1, 101, span.End, span.Start, 0).
			WillReturnRows(sqlmock.NewRows(reservationCols).
				AddRow(4, 2, day("2024-02-28"), day("2024-03-02"), nil, nil, 1, 101, 3))
		mock.ExpectCommit()

		var got []model.Reservation
		err := store.InTx(ctx, func(tx Tx) error {
			var err error
			got, err = tx.OverlappingReservations(ctx, model.RoomKey{HotelID: 1, RoomNumber: 101}, span, 0)
			return err
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(4), got[0].ID)
		assert.Nil(t, got[0].CheckInTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert MySQL", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reservations").
			WithArgs(2, span.Start, span.End, nil, nil, 1, 101, 3).
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectCommit()

		r := &model.Reservation{NumberOfGuests: 2, StartDate: span.Start, EndDate: span.End,
			HotelID: 1, RoomNumber: 101, CustomerID: 3}
		err := store.InTx(ctx, func(tx Tx) error { return tx.InsertReservation(ctx, r) })
		require.NoError(t, err)
		assert.Equal(t, int64(7), r.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert Postgres", func(t *testing.T) {
		store, mock := newMockStore(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO reservations (.+) VALUES \\(\\$1, \\$2, \\$3, \\$4, \\$5, \\$6, \\$7, \\$8\\) RETURNING id").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
		mock.ExpectCommit()

		r := &model.Reservation{NumberOfGuests: 1, StartDate: span.Start, EndDate: span.End,
			HotelID: 1, RoomNumber: 101, CustomerID: 3}
		err := store.InTx(ctx, func(tx Tx) error { return tx.InsertReservation(ctx, r) })
		require.NoError(t, err)
		assert.Equal(t, int64(9), r.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert Exclusion Violation", func(t *testing.T) {
		store, mock := newMockStore(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})
		mock.ExpectRollback()

		r := &model.Reservation{NumberOfGuests: 1, StartDate: span.Start, EndDate: span.End}
		err := store.InTx(ctx, func(tx Tx) error { return tx.InsertReservation(ctx, r) })
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Delete Missing", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM reservations WHERE id = \\?").
			WithArgs(42).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.InTx(ctx, func(tx Tx) error { return tx.DeleteReservation(ctx, 42) })
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLTx_Staff(t *testing.T) {
	ctx := context.Background()

	t.Run("First Available", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectQuery("FROM staff WHERE works_for_hotel_id = \\? AND title = \\? (.+) ORDER BY id LIMIT 1 FOR UPDATE SKIP LOCKED").
			WithArgs(1, "Catering").
			WillReturnRows(sqlmock.NewRows(staffCols).
				AddRow(5, "Ann", "Catering", nil, "F&B", "555-0100", "1 Main", "27606", 1, nil, nil))
		mock.ExpectCommit()

		var got *model.Staff
		err := store.InTx(ctx, func(tx Tx) error {
			var err error
			got, err = tx.FirstAvailableStaff(ctx, 1, "Catering")
			return err
		})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(5), got.ID)
		assert.False(t, got.Assigned())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("None Available", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectQuery("FROM staff").WillReturnRows(sqlmock.NewRows(staffCols))
		mock.ExpectCommit()

		var got *model.Staff
		err := store.InTx(ctx, func(tx Tx) error {
			var err error
			got, err = tx.FirstAvailableStaff(ctx, 1, "Room Service")
			return err
		})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Serves Is Idempotent Per Driver", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectBegin()
		mock.ExpectExec("INSERT IGNORE INTO serves").WithArgs(5, 7).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		require.NoError(t, store.InTx(ctx, func(tx Tx) error {
			return tx.InsertServes(ctx, model.Serves{StaffID: 5, ReservationID: 7})
		}))
		assert.NoError(t, mock.ExpectationsWereMet())

		pgStore, pgMock := newMockStore(t, "postgres")
		pgMock.ExpectBegin()
		pgMock.ExpectExec("INSERT INTO serves \\(staff_id, reservation_id\\) VALUES \\(\\$1, \\$2\\) ON CONFLICT DO NOTHING").
			WithArgs(5, 7).WillReturnResult(sqlmock.NewResult(0, 0))
		pgMock.ExpectCommit()
		require.NoError(t, pgStore.InTx(ctx, func(tx Tx) error {
			return tx.InsertServes(ctx, model.Serves{StaffID: 5, ReservationID: 7})
		}))
		assert.NoError(t, pgMock.ExpectationsWereMet())
	})
}

func TestSQLStore_Reports(t *testing.T) {
	ctx := context.Background()

	t.Run("Room Locations For One Hotel", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		mock.ExpectQuery("FROM rooms r JOIN hotels h ON h.id = r.hotel_id JOIN zip_to_city_state z ON z.zip = h.zip WHERE r.hotel_id = \\? ORDER BY h.id, r.room_number").
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "hotel_name", "street", "zip", "city", "state",
				"hotel_phone", "room_number", "category", "occupancy", "nightly_rate_cents"}).
				AddRow(2, "Sheraton", "1 Hillsborough", "27601", "Raleigh", "NC", "919-555-0000", 1, "Economy", 2, 9900))

		got, err := store.RoomLocations(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Raleigh", got[0].City)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Hotel Transactions", func(t *testing.T) {
		store, mock := newMockStore(t, "mysql")
		from, to := day("2017-01-11"), day("2017-01-13")
		mock.ExpectQuery("FROM transactions t JOIN reservations r ON r.id = t.reservation_id WHERE t.date >= \\? AND t.date < \\?").
			WithArgs(from, to).
			WillReturnRows(sqlmock.NewRows([]string{"id", "amount_cents", "type", "date", "reservation_id", "hotel_id"}).
				AddRow(1, 5000, "Dry Cleaning", day("2017-01-11"), 3, 1))

		got, err := store.HotelTransactions(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(5000), got[0].AmountCents)
		assert.Equal(t, int64(1), got[0].HotelID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, ErrConflict},
		{"mysql fk child", &mysql.MySQLError{Number: 1452}, ErrForeignKey},
		{"mysql fk parent", &mysql.MySQLError{Number: 1451}, ErrForeignKey},
		{"mysql check", &mysql.MySQLError{Number: 3819}, ErrCheck},
		{"pg unique", &pq.Error{Code: "23505"}, ErrConflict},
		{"pg exclusion", &pq.Error{Code: "23P01"}, ErrConflict},
		{"pg fk", &pq.Error{Code: "23503"}, ErrForeignKey},
		{"pg check", &pq.Error{Code: "23514"}, ErrCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.in)
			assert.ErrorIs(t, got, tt.want)
			assert.True(t, IsConstraint(got))
		})
	}

	other := errors.New("connection reset")
	assert.Equal(t, other, classify(other))
	assert.False(t, IsConstraint(other))
	assert.Nil(t, classify(nil))
}
