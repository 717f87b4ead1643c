// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that carry them.
package queue

// Event types carried in StayEvent.Type and the AMQP Type header.
const (
	EventCheckedIn  = "reservation.checked_in"
	EventCheckedOut = "reservation.checked_out"
)

// StayEvent is published after a check-in or check-out has been committed.
// It contains enough information for downstream consumers to log, notify,
// or trigger housekeeping without querying the primary database.
type StayEvent struct {
	Type          string  `json:"type"`
	ReservationID int64   `json:"reservation_id"`
	HotelID       int64   `json:"hotel_id"`
	RoomNumber    int64   `json:"room_number"`
	CustomerID    int64   `json:"customer_id"`
	StaffIDs      []int64 `json:"staff_ids"`              // assigned on check-in, released on check-out
	ChargeCents   int64   `json:"charge_cents,omitempty"` // room charge billed on check-out
	OccurredAt    string  `json:"occurred_at"`            // RFC3339, UTC
}
