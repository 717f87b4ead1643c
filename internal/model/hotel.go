package model

// ZipToCityState maps a postal code to its city and state.  Hotels, staff
// and customers reference it for their address.
type ZipToCityState struct {
	Zip   string `db:"zip" json:"zip"`     // zip_to_city_state.zip
	City  string `db:"city" json:"city"`   // zip_to_city_state.city
	State string `db:"state" json:"state"` // zip_to_city_state.state
}

// Hotel represents a row in the `hotels` table.  Deleting a hotel cascades
// to its rooms and to the staff working for it.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name, non-empty.
//  Street      – street address.
//  Zip         – references zip_to_city_state.zip.
//  PhoneNumber – unique contact number.
type Hotel struct {
	ID          int64  `db:"id" json:"id"`                     // hotels.id
	Name        string `db:"name" json:"name"`                 // hotels.name
	Street      string `db:"street" json:"street"`             // hotels.street
	Zip         string `db:"zip" json:"zip"`                   // hotels.zip
	PhoneNumber string `db:"phone_number" json:"phone_number"` // hotels.phone_number
}
