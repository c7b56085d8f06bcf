package domain

import "errors"

var (
	ErrSourceUnavailable            = errors.New("pms source unavailable")
	ErrListingNotFound              = errors.New("listing not found")
	ErrNotMapped                    = errors.New("property not mapped to an external listing")
	ErrInvalidRange                 = errors.New("invalid date range")
	ErrConflictLocalReservationWins = errors.New("day held by a local reservation")
	ErrAlreadySynced                = errors.New("reservation already published")
	ErrPropertyNotFound             = errors.New("property not found")
	ErrReservationNotFound          = errors.New("reservation not found")
	ErrDayNotFound                  = errors.New("calendar day not found")
	ErrInvalidID                    = errors.New("invalid id")
)
