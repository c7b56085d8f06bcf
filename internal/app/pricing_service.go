package app

import (
	"context"
	"math"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// SnapshotSource resolves listing snapshots, normally the listing cache.
type SnapshotSource interface {
	Get(ctx context.Context, externalListingID string) (domain.ListingSnapshot, error)
}

// PricingService computes guest-facing quotes from a listing's per-day rate
// table. It has no side effects: the same snapshot and range always produce
// the same breakdown.
type PricingService struct {
	snapshots SnapshotSource
}

func NewPricingService(snapshots SnapshotSource) *PricingService {
	return &PricingService{snapshots: snapshots}
}

type QuoteInput struct {
	ExternalListingID string
	CheckIn           time.Time
	CheckOut          time.Time
	Guests            int
}

func (s *PricingService) Quote(ctx context.Context, in QuoteInput) (domain.PricingQuote, error) {
	checkIn := domain.DateOnly(in.CheckIn)
	checkOut := domain.DateOnly(in.CheckOut)
	if !checkOut.After(checkIn) {
		return domain.PricingQuote{}, domain.ErrInvalidRange
	}

	snap, err := s.snapshots.Get(ctx, in.ExternalListingID)
	if err != nil {
		return domain.PricingQuote{}, err
	}

	quote := domain.PricingQuote{
		Nights:   domain.Nights(checkIn, checkOut),
		Currency: snap.Currency,
	}

	var accommodation int64
	for day := checkIn; day.Before(checkOut); day = day.AddDate(0, 0, 1) {
		key := domain.DateKey(day)
		rd, ok := snap.RateDays[key]
		if !ok {
			// No rate data is never treated as free to book.
			quote.BlockedDates = append(quote.BlockedDates, key)
			quote.NightlyRates = append(quote.NightlyRates, domain.NightlyRate{Date: key})
			continue
		}
		if rd.Status != domain.RateStatusAvailable {
			quote.BlockedDates = append(quote.BlockedDates, key)
		}
		if rd.MinNights > quote.MinNights {
			quote.MinNights = rd.MinNights
		}
		quote.NightlyRates = append(quote.NightlyRates, domain.NightlyRate{Date: key, Amount: rd.Price})
		accommodation += rd.Price
	}

	quote.AccommodationTotal = accommodation
	quote.CleaningFee = snap.Fees.CleaningFee
	quote.ServiceFee = roundMoney(float64(accommodation+quote.CleaningFee) * snap.Fees.ServiceRate)
	quote.Taxes = roundMoney(float64(accommodation+quote.CleaningFee+quote.ServiceFee) * snap.Fees.TaxRate)
	quote.GrandTotal = accommodation + quote.CleaningFee + quote.ServiceFee + quote.Taxes
	if quote.Nights > 0 {
		quote.AverageNightlyRate = roundMoney(float64(accommodation) / float64(quote.Nights))
	}
	quote.Available = len(quote.BlockedDates) == 0

	return quote, nil
}

func roundMoney(v float64) int64 {
	return int64(math.Round(v))
}
