package model

import "time"

// Staff represents a row in the `staff` table.  Every staff member works
// for exactly one hotel and may be dedicated to at most one room at a time.
// AssignedHotelID and AssignedRoomNumber are either both set or both nil.
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – full name.
//  Title              – job title; dedicated-staff roles match on it.
//  DateOfBirth        – optional.
//  Department         – organizational unit.
//  PhoneNumber        – contact number.
//  Street, Zip        – home address.
//  WorksForHotelID    – home hotel.
//  AssignedHotelID    – hotel of the room currently served (nullable).
//  AssignedRoomNumber – room currently served (nullable).
type Staff struct {
	ID                 int64      `db:"id" json:"id"`                                       // staff.id
	Name               string     `db:"name" json:"name"`                                   // staff.name
	Title              string     `db:"title" json:"title"`                                 // staff.title
	DateOfBirth        *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`       // staff.date_of_birth
	Department         string     `db:"department" json:"department"`                       // staff.department
	PhoneNumber        string     `db:"phone_number" json:"phone_number"`                   // staff.phone_number
	Street             string     `db:"street" json:"street"`                               // staff.street
	Zip                string     `db:"zip" json:"zip"`                                     // staff.zip
	WorksForHotelID    int64      `db:"works_for_hotel_id" json:"works_for_hotel_id"`       // staff.works_for_hotel_id
	AssignedHotelID    *int64     `db:"assigned_hotel_id" json:"assigned_hotel_id"`         // staff.assigned_hotel_id
	AssignedRoomNumber *int64     `db:"assigned_room_number" json:"assigned_room_number"`   // staff.assigned_room_number
}

// Assigned reports whether the staff member is dedicated to a room.
func (s Staff) Assigned() bool {
	return s.AssignedHotelID != nil && s.AssignedRoomNumber != nil
}

// Serves records that a staff member interacted with a reservation.  Rows
// are append-only and survive the staff member's release.
type Serves struct {
	StaffID       int64 `db:"staff_id" json:"staff_id"`             // serves.staff_id
	ReservationID int64 `db:"reservation_id" json:"reservation_id"` // serves.reservation_id
}
