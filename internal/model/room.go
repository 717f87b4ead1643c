package model

// Room is keyed by (HotelID, RoomNumber).  Occupancy bounds the number of
// guests a reservation may bring (1..9); NightlyRateCents is the per-night
// charge applied at checkout.
type Room struct {
	HotelID          int64  `db:"hotel_id" json:"hotel_id"`                     // rooms.hotel_id
	RoomNumber       int64  `db:"room_number" json:"room_number"`               // rooms.room_number
	Category         string `db:"category" json:"category"`                     // rooms.category
	Occupancy        int    `db:"occupancy" json:"occupancy"`                   // rooms.occupancy
	NightlyRateCents int64  `db:"nightly_rate_cents" json:"nightly_rate_cents"` // rooms.nightly_rate_cents
}

// RoomKey identifies a room within the hotel chain.
type RoomKey struct {
	HotelID    int64
	RoomNumber int64
}

// Key returns the composite key of the room.
func (r Room) Key() RoomKey { return RoomKey{HotelID: r.HotelID, RoomNumber: r.RoomNumber} }

// Less orders keys by hotel then room number.  Row locks are always taken
// in this order.
func (k RoomKey) Less(o RoomKey) bool {
	if k.HotelID != o.HotelID {
		return k.HotelID < o.HotelID
	}
	return k.RoomNumber < o.RoomNumber
}

// RoomLocation joins a room with its hotel and the hotel's city/state.  It
// is the row shape of availability and occupancy reports.
type RoomLocation struct {
	HotelID          int64  `db:"hotel_id" json:"hotel_id"`
	HotelName        string `db:"hotel_name" json:"hotel_name"`
	Street           string `db:"street" json:"street"`
	Zip              string `db:"zip" json:"zip"`
	City             string `db:"city" json:"city"`
	State            string `db:"state" json:"state"`
	HotelPhone       string `db:"hotel_phone" json:"hotel_phone"`
	RoomNumber       int64  `db:"room_number" json:"room_number"`
	Category         string `db:"category" json:"category"`
	Occupancy        int    `db:"occupancy" json:"occupancy"`
	NightlyRateCents int64  `db:"nightly_rate_cents" json:"nightly_rate_cents"`
}

// Key returns the composite key of the located room.
func (l RoomLocation) Key() RoomKey {
	return RoomKey{HotelID: l.HotelID, RoomNumber: l.RoomNumber}
}
