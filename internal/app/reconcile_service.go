package app

import (
	"context"
	"fmt"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/clock"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/pms"
)

// AvailabilityProber is the PMS availability feed: a pricing probe whose
// answer names the dates that block a window.
type AvailabilityProber interface {
	GetPricing(ctx context.Context, externalListingID string, checkIn, checkOut time.Time, guests int) (pms.AvailabilityProbe, error)
}

const (
	defaultHorizonDays = 365
	defaultWindowDays  = 7
	probeGuests        = 1
)

// ReconcileService pulls externally-made bookings and blocks into the
// internal calendar. Windows are probed sequentially; one window's failure is
// recorded and the pass continues with the next.
type ReconcileService struct {
	properties  PropertySource
	store       CalendarStore
	events      SyncEventSink
	prober      AvailabilityProber
	clock       clock.Clock
	horizonDays int
	windowDays  int
}

type ReconcileOption func(*ReconcileService)

// WithHorizonDays overrides how far ahead a pass reconciles.
func WithHorizonDays(days int) ReconcileOption {
	return func(s *ReconcileService) {
		if days > 0 {
			s.horizonDays = days
		}
	}
}

func NewReconcileService(properties PropertySource, store CalendarStore, events SyncEventSink, prober AvailabilityProber, clk clock.Clock, opts ...ReconcileOption) *ReconcileService {
	s := &ReconcileService{
		properties:  properties,
		store:       store,
		events:      events,
		prober:      prober,
		clock:       clk,
		horizonDays: defaultHorizonDays,
		windowDays:  defaultWindowDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReconcileService) Reconcile(ctx context.Context, propertyID string) (domain.SyncResult, error) {
	property, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return domain.SyncResult{}, err
	}
	if property.ExternalListingID == nil {
		return domain.SyncResult{}, domain.ErrNotMapped
	}
	listingID := *property.ExternalListingID

	now := s.clock.Now()
	from := domain.DateOnly(now)
	to := from.AddDate(0, 0, s.horizonDays)

	existingDays, err := s.store.GetRange(ctx, propertyID, from, to)
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("load calendar horizon: %w", err)
	}
	existing := make(map[string]domain.CalendarDay, len(existingDays))
	for _, d := range existingDays {
		existing[domain.DateKey(d.Day)] = d
	}

	result := domain.SyncResult{PropertyID: propertyID}
	for winStart := from; winStart.Before(to); winStart = winStart.AddDate(0, 0, s.windowDays) {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cancelled at %s: %v", domain.DateKey(winStart), ctx.Err()))
			break
		}

		winEnd := winStart.AddDate(0, 0, s.windowDays)
		if winEnd.After(to) {
			winEnd = to
		}

		probe, err := s.prober.GetPricing(ctx, listingID, winStart, winEnd, probeGuests)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("window %s..%s: %v", domain.DateKey(winStart), domain.DateKey(winEnd), err))
			continue
		}

		blocked := make(map[string]bool, len(probe.UnavailableDates))
		for _, d := range probe.UnavailableDates {
			blocked[d] = true
		}
		// An unbookable window with no named dates blocks the whole window.
		wholeWindowBlocked := !probe.Available && len(probe.UnavailableDates) == 0

		for day := winStart; day.Before(winEnd); day = day.AddDate(0, 0, 1) {
			key := domain.DateKey(day)
			local, hasLocal := existing[key]
			externallyBlocked := wholeWindowBlocked || blocked[key]

			result.DaysProcessed++

			if externallyBlocked {
				if hasLocal && local.ReservationID != nil {
					// Local reservation owns the day; the PMS merely echoes
					// the booking we published.
					continue
				}
				if hasLocal && local.Status == domain.DayStatusBlocked {
					continue
				}
				err := s.store.UpsertDay(ctx, domain.CalendarDay{
					PropertyID: propertyID,
					Day:        day,
					Status:     domain.DayStatusBlocked,
					Reason:     domain.ReasonSyncedExternal,
					UpdatedAt:  now,
				})
				switch err {
				case nil:
					result.DaysBlocked++
				case domain.ErrConflictLocalReservationWins:
					// Expected when a reservation confirmed concurrently.
				default:
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
				}
				continue
			}

			// Externally available: only days this engine blocked may be
			// freed. Manual blocks and reserved days stay.
			if hasLocal && local.Status == domain.DayStatusBlocked &&
				local.ReservationID == nil && local.Reason == domain.ReasonSyncedExternal {
				err := s.store.FreeDay(ctx, propertyID, day, domain.ReasonSyncedExternal, now)
				switch err {
				case nil:
					result.DaysFreed++
				case domain.ErrConflictLocalReservationWins, domain.ErrDayNotFound:
					// Lost a race to a concurrent booking or manual action.
				default:
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
				}
			}
		}
	}

	ev := domain.SyncEvent{
		ID:             newUUID(),
		OrganizationID: property.OrganizationID,
		PropertyID:     propertyID,
		Direction:      domain.SyncDirectionInbound,
		Counts: domain.SyncCounts{
			Processed: result.DaysProcessed,
			Blocked:   result.DaysBlocked,
			Freed:     result.DaysFreed,
		},
		Errors:    result.Errors,
		CreatedAt: now,
	}
	if err := s.events.Append(ctx, ev); err != nil {
		return result, fmt.Errorf("record inbound event: %w", err)
	}
	return result, nil
}
