package model

import "time"

// Customer represents a row in the `customers` table.  A customer holds at
// most one payment account; when that account is a hotel card the customer
// receives the loyalty discount on every bill.
type Customer struct {
	ID            int64      `db:"id" json:"id"`                                   // customers.id
	SSN           string     `db:"ssn" json:"ssn"`                                 // customers.ssn (unique)
	Name          string     `db:"name" json:"name"`                               // customers.name
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`   // customers.date_of_birth
	PhoneNumber   string     `db:"phone_number" json:"phone_number"`               // customers.phone_number
	Email         string     `db:"email" json:"email"`                             // customers.email
	Street        string     `db:"street" json:"street"`                           // customers.street
	Zip           string     `db:"zip" json:"zip"`                                 // customers.zip
	AccountNumber *string    `db:"account_number" json:"account_number,omitempty"` // customers.account_number (nullable)
	IsHotelCard   *bool      `db:"is_hotel_card" json:"is_hotel_card,omitempty"`   // customers.is_hotel_card (nullable)
}

// HasHotelCard reports whether the customer pays with a hotel card.
func (c Customer) HasHotelCard() bool {
	return c.IsHotelCard != nil && *c.IsHotelCard
}
