package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

func seeded() (*Store, model.Reservation) {
	s := New()
	s.AddZip(model.ZipToCityState{Zip: "27601", City: "Raleigh", State: "NC"})
	h := s.AddHotel(model.Hotel{Name: "Sheraton", Zip: "27601", PhoneNumber: "919-555-0000"})
	s.AddRoom(model.Room{HotelID: h.ID, RoomNumber: 1, Category: "Economy", Occupancy: 2, NightlyRateCents: 10000})
	c := s.AddCustomer(model.Customer{Name: "Alice", SSN: "111-11-1111"})
	r := s.AddReservation(model.Reservation{
		NumberOfGuests: 1, HotelID: h.ID, RoomNumber: 1, CustomerID: c.ID,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	})
	return s, r
}

func TestInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Rollback Restores Snapshot", func(t *testing.T) {
		s, r := seeded()
		boom := errors.New("boom")
		err := s.InTx(ctx, func(tx repository.Tx) error {
			require.NoError(t, tx.InsertTransaction(ctx, &model.Transaction{
				AmountCents: 100, Type: "Phone", Date: r.StartDate, ReservationID: r.ID,
			}))
			require.NoError(t, tx.DeleteReservation(ctx, r.ID))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.ReservationByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		txs, err := s.TransactionsByReservation(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("Delete Cascades", func(t *testing.T) {
		s, r := seeded()
		require.NoError(t, s.InTx(ctx, func(tx repository.Tx) error {
			return tx.InsertTransaction(ctx, &model.Transaction{
				AmountCents: 100, Type: "Phone", Date: r.StartDate, ReservationID: r.ID,
			})
		}))
		require.NoError(t, s.InTx(ctx, func(tx repository.Tx) error {
			return tx.DeleteReservation(ctx, r.ID)
		}))

		_, err := s.ReservationByID(ctx, r.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		txs, err := s.TransactionsByReservation(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("Constraints", func(t *testing.T) {
		s, r := seeded()
		err := s.InTx(ctx, func(tx repository.Tx) error {
			bad := r
			bad.ID = 0
			bad.CustomerID = 999
			return tx.InsertReservation(ctx, &bad)
		})
		assert.ErrorIs(t, err, repository.ErrForeignKey)
		assert.Equal(t, 1, s.Reservations())
	})
}
