package repository

import (
	"context"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

const reservationColumns = `id, number_of_guests, start_date, end_date, check_in_time, check_out_time,
       hotel_id, room_number, customer_id`

const roomColumns = `hotel_id, room_number, category, occupancy, nightly_rate_cents`

// ReservationByID loads one reservation without locking it.
func (q sqlQueries) ReservationByID(ctx context.Context, id int64) (*model.Reservation, error) {
	var r model.Reservation
	if err := q.get(ctx, &r, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id); err != nil {
		return nil, err
	}
	normalizeReservation(&r)
	return &r, nil
}

// RoomByKey loads one room without locking it.
func (q sqlQueries) RoomByKey(ctx context.Context, key model.RoomKey) (*model.Room, error) {
	var room model.Room
	const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? AND room_number = ?`
	if err := q.get(ctx, &room, sel, key.HotelID, key.RoomNumber); err != nil {
		return nil, err
	}
	return &room, nil
}

// LockRoom selects the room FOR UPDATE.  A second writer for the same room
// blocks here until the first transaction ends, which makes the overlap
// check that follows race free.
func (t *sqlTx) LockRoom(ctx context.Context, key model.RoomKey) (*model.Room, error) {
	var room model.Room
	const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? AND room_number = ? FOR UPDATE`
	if err := t.get(ctx, &room, sel, key.HotelID, key.RoomNumber); err != nil {
		return nil, err
	}
	return &room, nil
}

// LockReservation selects the reservation FOR UPDATE.
func (t *sqlTx) LockReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var r model.Reservation
	if err := t.get(ctx, &r, `SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id); err != nil {
		return nil, err
	}
	normalizeReservation(&r)
	return &r, nil
}

// OverlappingReservations uses the half-open rule: two stays collide when
// each starts before the other ends.  Back-to-back stays (one ending on the
// day the next begins) do not match.
func (t *sqlTx) OverlappingReservations(ctx context.Context, key model.RoomKey, span interval.Span, excludeID int64) ([]model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + `
FROM reservations
WHERE hotel_id = ? AND room_number = ?
  AND start_date < ? AND ? < end_date
  AND id <> ?
ORDER BY start_date, id`
	var out []model.Reservation
	if err := t.selectAll(ctx, &out, sel, key.HotelID, key.RoomNumber, span.End, span.Start, excludeID); err != nil {
		return nil, err
	}
	for i := range out {
		normalizeReservation(&out[i])
	}
	return out, nil
}

// InsertReservation inserts r and sets its generated id.
func (t *sqlTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	const ins = `INSERT INTO reservations
(number_of_guests, start_date, end_date, check_in_time, check_out_time, hotel_id, room_number, customer_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := t.insertID(ctx, ins,
		r.NumberOfGuests, r.StartDate, r.EndDate, r.CheckInTime, r.CheckOutTime,
		r.HotelID, r.RoomNumber, r.CustomerID)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// UpdateReservation overwrites every mutable column of r.
func (t *sqlTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	const upd = `UPDATE reservations
SET number_of_guests = ?, start_date = ?, end_date = ?, check_in_time = ?, check_out_time = ?,
    hotel_id = ?, room_number = ?, customer_id = ?
WHERE id = ?`
	_, err := t.exec(ctx, upd,
		r.NumberOfGuests, r.StartDate, r.EndDate, r.CheckInTime, r.CheckOutTime,
		r.HotelID, r.RoomNumber, r.CustomerID, r.ID)
	return err
}

// DeleteReservation removes the reservation.  Its transactions and serves
// rows are removed by ON DELETE CASCADE.
func (t *sqlTx) DeleteReservation(ctx context.Context, id int64) error {
	n, err := t.exec(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// normalizeReservation strips the time of day and location from the stay
// dates.  Drivers hand DATE columns back in various locations.
func normalizeReservation(r *model.Reservation) {
	r.StartDate = interval.Day(r.StartDate)
	r.EndDate = interval.Day(r.EndDate)
	if r.CheckInTime != nil {
		t := r.CheckInTime.UTC()
		r.CheckInTime = &t
	}
	if r.CheckOutTime != nil {
		t := r.CheckOutTime.UTC()
		r.CheckOutTime = &t
	}
}
