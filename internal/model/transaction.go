package model

import "time"

// Transaction is a billing line item of a reservation.  The room charge is
// generated at checkout; service charges (phone, dry cleaning, gym, ...) are
// entered by staff.
type Transaction struct {
	ID            int64     `db:"id" json:"id"`                         // transactions.id
	AmountCents   int64     `db:"amount_cents" json:"amount_cents"`     // transactions.amount_cents
	Type          string    `db:"type" json:"type"`                     // transactions.type
	Date          time.Time `db:"date" json:"date"`                     // transactions.date
	ReservationID int64     `db:"reservation_id" json:"reservation_id"` // transactions.reservation_id
}

// HotelTransaction is a transaction annotated with the hotel of the
// reservation it belongs to.  Revenue reports aggregate these rows.
type HotelTransaction struct {
	Transaction
	HotelID int64 `db:"hotel_id" json:"hotel_id"`
}
