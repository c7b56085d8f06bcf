package domain

// NightlyRate is one night's price within a quote.
type NightlyRate struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

// PricingQuote is a deterministic price breakdown for a stay. All amounts are
// minor currency units. Derived per request, never persisted.
type PricingQuote struct {
	Nights             int           `json:"nights"`
	NightlyRates       []NightlyRate `json:"nightly_rates"`
	AccommodationTotal int64         `json:"accommodation_total"`
	CleaningFee        int64         `json:"cleaning_fee"`
	ServiceFee         int64         `json:"service_fee"`
	Taxes              int64         `json:"taxes"`
	GrandTotal         int64         `json:"grand_total"`
	AverageNightlyRate int64         `json:"average_nightly_rate"`
	Currency           string        `json:"currency"`
	MinNights          int           `json:"min_nights"`
	Available          bool          `json:"available"`
	BlockedDates       []string      `json:"blocked_dates"`
}
