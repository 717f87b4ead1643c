package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockGateway(t *testing.T, driver string) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewGateway(sqlx.NewDb(db, driver)), mock
}

func TestGateway_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("Filter Is Bound In Column Order", func(t *testing.T) {
		g, mock := newMockGateway(t, "mysql")
		mock.ExpectQuery("SELECT hotel_id, room_number, category, occupancy, nightly_rate_cents FROM rooms WHERE category = ? AND hotel_id = ? ORDER BY hotel_id").
			WithArgs("Suite", 1).
			WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, 301, []byte("Suite"), 4, 45000))

		rows, err := g.Query(ctx, "rooms", Row{"hotel_id": 1, "category": "Suite"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Suite", rows[0]["category"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nil Filter Matches Null", func(t *testing.T) {
		g, mock := newMockGateway(t, "postgres")
		mock.ExpectQuery("SELECT id, name, title, date_of_birth, department, phone_number, street, zip, works_for_hotel_id, assigned_hotel_id, assigned_room_number FROM staff WHERE assigned_hotel_id IS NULL AND works_for_hotel_id = $1 ORDER BY id").
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(staffCols))

		rows, err := g.Query(ctx, "staff", Row{"works_for_hotel_id": 3, "assigned_hotel_id": nil})
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Table", func(t *testing.T) {
		g, _ := newMockGateway(t, "mysql")
		_, err := g.Query(ctx, "reservations", nil)
		assert.ErrorIs(t, err, ErrInvalidTable)
	})

	t.Run("Unknown Column", func(t *testing.T) {
		g, _ := newMockGateway(t, "mysql")
		_, err := g.Query(ctx, "hotels", Row{"name; DROP TABLE hotels": "x"})
		assert.ErrorIs(t, err, ErrInvalidColumn)
	})
}

func TestGateway_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("Generated Id", func(t *testing.T) {
		g, mock := newMockGateway(t, "mysql")
		mock.ExpectExec("INSERT INTO hotels (name, phone_number, street, zip) VALUES (?, ?, ?, ?)").
			WithArgs("Sheraton", "919-555-0000", "1 Hillsborough", "27601").
			WillReturnResult(sqlmock.NewResult(12, 1))

		id, err := g.Insert(ctx, "hotels", Row{
			"name": "Sheraton", "street": "1 Hillsborough", "zip": "27601", "phone_number": "919-555-0000",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Natural Key", func(t *testing.T) {
		g, mock := newMockGateway(t, "postgres")
		mock.ExpectExec("INSERT INTO zip_to_city_state (city, state, zip) VALUES ($1, $2, $3)").
			WithArgs("Raleigh", "NC", "27601").
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := g.Insert(ctx, "zip_to_city_state", Row{"zip": "27601", "city": "Raleigh", "state": "NC"})
		require.NoError(t, err)
		assert.Zero(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGateway_UpdateDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Update", func(t *testing.T) {
		g, mock := newMockGateway(t, "mysql")
		mock.ExpectExec("UPDATE rooms SET nightly_rate_cents = ? WHERE hotel_id = ? AND room_number = ?").
			WithArgs(15000, 1, 101).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := g.Update(ctx, "rooms", Row{"nightly_rate_cents": 15000}, Row{"hotel_id": 1, "room_number": 101})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Filter Refused", func(t *testing.T) {
		g, _ := newMockGateway(t, "mysql")
		_, err := g.Update(ctx, "rooms", Row{"occupancy": 2}, nil)
		assert.ErrorIs(t, err, ErrEmptyFilter)
		_, err = g.Delete(ctx, "rooms", Row{})
		assert.ErrorIs(t, err, ErrEmptyFilter)
	})

	t.Run("Staff Assignment Is Read-Only", func(t *testing.T) {
		g, mock := newMockGateway(t, "mysql")
		_, err := g.Update(ctx, "staff", Row{"assigned_hotel_id": 1, "assigned_room_number": 101}, Row{"id": 7})
		assert.ErrorIs(t, err, ErrInvalidColumn)
		_, err = g.Insert(ctx, "staff", Row{"name": "Rita", "title": "Room Service", "works_for_hotel_id": 1, "assigned_hotel_id": 1})
		assert.ErrorIs(t, err, ErrInvalidColumn)
		assert.NoError(t, mock.ExpectationsWereMet(), "nothing reaches the database")
	})

	t.Run("Delete Restricted", func(t *testing.T) {
		g, mock := newMockGateway(t, "mysql")
		mock.ExpectExec("DELETE FROM customers WHERE id = ?").
			WithArgs(3).
			WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

		_, err := g.Delete(ctx, "customers", Row{"id": 3})
		assert.ErrorIs(t, err, ErrForeignKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
