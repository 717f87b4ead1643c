package repository

import (
	"context"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

const customerColumns = `id, ssn, name, date_of_birth, phone_number, email, street, zip,
       account_number, is_hotel_card`

const transactionColumns = `id, amount_cents, type, date, reservation_id`

// CustomerByID loads one customer.
func (q sqlQueries) CustomerByID(ctx context.Context, id int64) (*model.Customer, error) {
	var c model.Customer
	if err := q.get(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// TransactionsByReservation returns the line items of a reservation in
// insertion (id) order.
func (q sqlQueries) TransactionsByReservation(ctx context.Context, reservationID int64) ([]model.Transaction, error) {
	out := []model.Transaction{}
	const sel = `SELECT ` + transactionColumns + ` FROM transactions WHERE reservation_id = ? ORDER BY id`
	if err := q.selectAll(ctx, &out, sel, reservationID); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertTransaction inserts t and sets its generated id.
func (t *sqlTx) InsertTransaction(ctx context.Context, tr *model.Transaction) error {
	const ins = `INSERT INTO transactions (amount_cents, type, date, reservation_id) VALUES (?, ?, ?, ?)`
	id, err := t.insertID(ctx, ins, tr.AmountCents, tr.Type, tr.Date, tr.ReservationID)
	if err != nil {
		return err
	}
	tr.ID = id
	return nil
}
