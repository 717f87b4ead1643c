package repository

import (
	"context"
	"time"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

// Hotels lists every hotel ordered by id, including hotels without rooms.
func (q sqlQueries) Hotels(ctx context.Context) ([]model.Hotel, error) {
	out := []model.Hotel{}
	if err := q.selectAll(ctx, &out, `SELECT id, name, street, zip, phone_number FROM hotels ORDER BY id`); err != nil {
		return nil, err
	}
	return out, nil
}

// RoomLocations joins rooms with their hotel and the hotel's zip lookup.
func (q sqlQueries) RoomLocations(ctx context.Context, hotelID int64) ([]model.RoomLocation, error) {
	query := `SELECT h.id AS hotel_id, h.name AS hotel_name, h.street, h.zip, z.city, z.state,
       h.phone_number AS hotel_phone, r.room_number, r.category, r.occupancy, r.nightly_rate_cents
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
JOIN zip_to_city_state z ON z.zip = h.zip`
	args := []any{}
	if hotelID > 0 {
		query += `
WHERE r.hotel_id = ?`
		args = append(args, hotelID)
	}
	query += `
ORDER BY h.id, r.room_number`

	out := []model.RoomLocation{}
	if err := q.selectAll(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// ReservationsOverlapping lists every reservation sharing a night with span.
func (q sqlQueries) ReservationsOverlapping(ctx context.Context, span interval.Span) ([]model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + `
FROM reservations
WHERE start_date < ? AND ? < end_date
ORDER BY hotel_id, room_number, start_date`
	out := []model.Reservation{}
	if err := q.selectAll(ctx, &out, sel, span.End, span.Start); err != nil {
		return nil, err
	}
	for i := range out {
		normalizeReservation(&out[i])
	}
	return out, nil
}

// HotelTransactions returns transactions with from <= date < to, tagged
// with the hotel of their reservation.
func (q sqlQueries) HotelTransactions(ctx context.Context, from, to time.Time) ([]model.HotelTransaction, error) {
	const sel = `SELECT t.id, t.amount_cents, t.type, t.date, t.reservation_id, r.hotel_id
FROM transactions t
JOIN reservations r ON r.id = t.reservation_id
WHERE t.date >= ? AND t.date < ?
ORDER BY t.id`
	out := []model.HotelTransaction{}
	if err := q.selectAll(ctx, &out, sel, from, to); err != nil {
		return nil, err
	}
	return out, nil
}
