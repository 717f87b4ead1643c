package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

func TestRoomChargeType(t *testing.T) {
	assert.Equal(t, "4-night(s) Room Reservation Charge", RoomChargeType(4))
	assert.Equal(t, "1-night(s) Room Reservation Charge", RoomChargeType(1))
}

func TestBillingService_Discount(t *testing.T) {
	b := NewBillingService(nil, DefaultHotelCardDiscountBP, quietLogger())
	tests := []struct {
		cost, want int64
	}{
		{40000, 2000},
		{0, 0},
		{10, 1}, // 0.50 rounds up
		{9, 0},  // 0.45 rounds down
		{1999, 100},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, b.Discount(tc.cost), "cost %d", tc.cost)
	}
}

func TestBillingService_GenerateBill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("Hotel Card", func(t *testing.T) {
		req := f.request(100, "2018-04-11", "2018-04-15")
		req.CustomerID = f.cardHoldr.ID
		req.CheckInTime = str("2018-04-11 15:00:00")
		res, err := f.res.Create(ctx, req)
		require.NoError(t, err)
		id := res.Reservation.ID

		f.store.AddTransaction(model.Transaction{
			AmountCents: 1500, Type: "Phone Bill", ReservationID: id,
			Date: time.Date(2018, 4, 12, 9, 0, 0, 0, time.UTC),
		})
		_, err = f.res.CheckOut(ctx, id, time.Date(2018, 4, 15, 11, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		bill, err := f.billing.GenerateBill(ctx, id)
		require.NoError(t, err)
		require.Len(t, bill.Items, 2)
		assert.Equal(t, "Phone Bill", bill.Items[0].Type)
		assert.Equal(t, RoomChargeType(4), bill.Items[1].Type)
		assert.True(t, bill.HotelCard)
		assert.Equal(t, int64(41500), bill.CostCents)
		assert.Equal(t, int64(2075), bill.DiscountCents)
		assert.Equal(t, int64(39425), bill.TotalDueCents)
	})

	t.Run("No Card", func(t *testing.T) {
		req := f.request(101, "2018-05-01", "2018-05-03")
		req.CheckInTime = str("2018-05-01 15:00:00")
		req.CheckOutTime = str("2018-05-03 10:00:00")
		res, err := f.res.Create(ctx, req)
		require.NoError(t, err)

		bill, err := f.billing.GenerateBill(ctx, res.Reservation.ID)
		require.NoError(t, err)
		assert.False(t, bill.HotelCard)
		assert.Equal(t, int64(16000), bill.CostCents)
		assert.Zero(t, bill.DiscountCents)
		assert.Equal(t, bill.CostCents, bill.TotalDueCents)
	})

	t.Run("Nothing Billed Yet", func(t *testing.T) {
		res, err := f.res.Create(ctx, f.request(101, "2018-06-01", "2018-06-03"))
		require.NoError(t, err)

		bill, err := f.billing.GenerateBill(ctx, res.Reservation.ID)
		require.NoError(t, err)
		assert.Empty(t, bill.Items)
		assert.Zero(t, bill.TotalDueCents)
	})

	t.Run("Unknown Reservation", func(t *testing.T) {
		_, err := f.billing.GenerateBill(ctx, 999)
		var ne *NotFoundError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, "reservation", ne.Entity)
	})
}
