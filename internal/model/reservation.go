package model

import (
	"time"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
)

// Reservation books a room for the nights [StartDate, EndDate).  It is the
// aggregate root of the stay: check-in assigns dedicated staff, check-out
// bills the reserved nights and frees the staff again.
//
// Fields:
//  ID             – primary key identifier.
//  NumberOfGuests – 1..9 and never above the room occupancy.
//  StartDate      – first night (UTC midnight).
//  EndDate        – departure day (UTC midnight), strictly after StartDate.
//  CheckInTime    – set once the guest arrives (nullable).
//  CheckOutTime   – set once the guest leaves (nullable, requires CheckInTime).
//  HotelID        – hotel of the reserved room.
//  RoomNumber     – reserved room.
//  CustomerID     – paying customer.
type Reservation struct {
	ID             int64      `db:"id" json:"id"`                             // reservations.id
	NumberOfGuests int        `db:"number_of_guests" json:"number_of_guests"` // reservations.number_of_guests
	StartDate      time.Time  `db:"start_date" json:"start_date"`             // reservations.start_date
	EndDate        time.Time  `db:"end_date" json:"end_date"`                 // reservations.end_date
	CheckInTime    *time.Time `db:"check_in_time" json:"check_in_time"`       // reservations.check_in_time (nullable)
	CheckOutTime   *time.Time `db:"check_out_time" json:"check_out_time"`     // reservations.check_out_time (nullable)
	HotelID        int64      `db:"hotel_id" json:"hotel_id"`                 // reservations.hotel_id
	RoomNumber     int64      `db:"room_number" json:"room_number"`           // reservations.room_number
	CustomerID     int64      `db:"customer_id" json:"customer_id"`           // reservations.customer_id
}

// Span returns the reserved nights as a half-open interval.
func (r Reservation) Span() interval.Span {
	return interval.Span{Start: interval.Day(r.StartDate), End: interval.Day(r.EndDate)}
}

// RoomKey returns the key of the reserved room.
func (r Reservation) RoomKey() RoomKey {
	return RoomKey{HotelID: r.HotelID, RoomNumber: r.RoomNumber}
}
