package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

// DefaultHotelCardDiscountBP is the hotel-card discount in basis points.
const DefaultHotelCardDiscountBP = 500

// Bill is the itemized statement of a reservation.
type Bill struct {
	ReservationID int64               `json:"reservation_id"`
	CustomerID    int64               `json:"customer_id"`
	HotelCard     bool                `json:"hotel_card"`
	Items         []model.Transaction `json:"items"`
	CostCents     int64               `json:"cost_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TotalDueCents int64               `json:"total_due_cents"`
}

// BillingService charges reserved nights at checkout and totals bills.
type BillingService struct {
	store      repository.Store
	discountBP int64
	logger     *logrus.Logger
}

// NewBillingService creates a new billing service.  discountBP is the
// hotel-card discount in basis points (500 = 5%).
func NewBillingService(store repository.Store, discountBP int64, logger *logrus.Logger) *BillingService {
	return &BillingService{store: store, discountBP: discountBP, logger: logger}
}

// RoomChargeType is the transaction type of the checkout room charge.
func RoomChargeType(nights int) string {
	return fmt.Sprintf("%d-night(s) Room Reservation Charge", nights)
}

// ChargeOnCheckout inserts the room charge: reserved nights times the
// nightly rate, dated at the checkout time.  Billing follows the reserved
// dates, not the actual check-in and check-out times.
func (b *BillingService) ChargeOnCheckout(ctx context.Context, tx repository.Tx, r model.Reservation, room model.Room, checkOut time.Time) (*model.Transaction, error) {
	nights := r.Span().Nights()
	t := &model.Transaction{
		AmountCents:   int64(nights) * room.NightlyRateCents,
		Type:          RoomChargeType(nights),
		Date:          checkOut.UTC(),
		ReservationID: r.ID,
	}
	if err := tx.InsertTransaction(ctx, t); err != nil {
		return nil, wrapStore("insert room charge", err)
	}
	b.logger.WithFields(logrus.Fields{
		"reservation_id": r.ID,
		"nights":         nights,
		"amount_cents":   t.AmountCents,
	}).Info("room charge billed")
	return t, nil
}

// Discount returns the hotel-card discount on cost, rounded half up to
// the cent.
func (b *BillingService) Discount(cost int64) int64 {
	return (cost*b.discountBP + 5000) / 10000
}

// GenerateBill lists the reservation's transactions in id order and
// totals them.  A reservation without transactions yields a zero bill.
func (b *BillingService) GenerateBill(ctx context.Context, reservationID int64) (*Bill, error) {
	bill := &Bill{ReservationID: reservationID}
	err := b.store.InTx(ctx, func(tx repository.Tx) error {
		r, err := tx.ReservationByID(ctx, reservationID)
		if err != nil {
			return lookup("reservation", reservationID, err)
		}
		bill.CustomerID = r.CustomerID

		items, err := tx.TransactionsByReservation(ctx, reservationID)
		if err != nil {
			return wrapStore("list transactions", err)
		}
		bill.Items = items

		c, err := tx.CustomerByID(ctx, r.CustomerID)
		if err != nil {
			return lookup("customer", r.CustomerID, err)
		}
		bill.HotelCard = c.HasHotelCard()
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, it := range bill.Items {
		bill.CostCents += it.AmountCents
	}
	if bill.HotelCard {
		bill.DiscountCents = b.Discount(bill.CostCents)
	}
	bill.TotalDueCents = bill.CostCents - bill.DiscountCents
	return bill, nil
}
