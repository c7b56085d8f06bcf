package domain

import "time"

type RateStatus string

const (
	RateStatusAvailable RateStatus = "available"
	RateStatusBooked    RateStatus = "booked"
	RateStatusBlocked   RateStatus = "blocked"
)

// RateDay is one date's externally-owned price and availability record.
// Price is in minor currency units, normalized at the PMS boundary.
type RateDay struct {
	Status    RateStatus
	Price     int64
	MinNights int
	MaxNights int
	Note      string
}

// FeeConfig carries the listing-level fee parameters the PMS reports.
type FeeConfig struct {
	CleaningFee int64
	ServiceRate float64
	TaxRate     float64
}

// ListingSnapshot is a point-in-time copy of a PMS listing, keyed by
// external listing id and cached with a TTL. RateDays is keyed by ISO date.
type ListingSnapshot struct {
	ExternalListingID string
	Currency          string
	RateDays          map[string]RateDay
	Fees              FeeConfig
	FetchedAt         time.Time
}
