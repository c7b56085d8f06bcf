package domain

import "time"

type DayStatus string

const (
	DayStatusAvailable DayStatus = "available"
	DayStatusBooked    DayStatus = "booked"
	DayStatusBlocked   DayStatus = "blocked"
)

// Reasons recorded on calendar writes. SyncedExternal marks days the inbound
// reconciler blocked; only those may be freed by a later pass.
const (
	ReasonSyncedExternal   = "synced-external"
	ReasonManualBlock      = "manual-block"
	ReasonGuestReservation = "guest-reservation"
)

// CalendarDay is one date's internally-owned booking status. A day with a
// non-nil ReservationID belongs to a paid local reservation and must never be
// overwritten by sync.
type CalendarDay struct {
	PropertyID    string
	Day           time.Time
	Status        DayStatus
	Reason        string
	ReservationID *string
	UpdatedAt     time.Time
}
