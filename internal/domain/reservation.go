package domain

import "time"

// Reservation is a locally confirmed guest booking. ExternalReservationID is
// the idempotency marker: once set, the reservation has been published to the
// PMS and must not be published again.
type Reservation struct {
	ID                    string
	PropertyID            string
	GuestName             string
	GuestEmail            string
	GuestPhone            string
	Notes                 string
	CheckIn               time.Time
	CheckOut              time.Time
	GuestCount            int
	ExternalReservationID *string
	CreatedAt             time.Time
}
