package app

import (
	"context"
	"fmt"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/clock"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// CalendarStore is the write boundary of the internal calendar. Writes are
// conditional on the stored reservation id; implementations must reject any
// status change away from a locally reserved day with
// domain.ErrConflictLocalReservationWins.
type CalendarStore interface {
	UpsertDay(ctx context.Context, day domain.CalendarDay) error
	FreeDay(ctx context.Context, propertyID string, day time.Time, reason string, now time.Time) error
	GetRange(ctx context.Context, propertyID string, from, to time.Time) ([]domain.CalendarDay, error)
}

// SyncEventSink records append-only audit events.
type SyncEventSink interface {
	Append(ctx context.Context, ev domain.SyncEvent) error
}

// PropertySource resolves properties and their external listing mapping.
type PropertySource interface {
	GetProperty(ctx context.Context, id string) (domain.Property, error)
}

// CalendarService exposes calendar reads and manual block/unblock. The PMS
// webhook handler goes through the same UpsertDay path, so manual and
// webhook writes obey the same conflict rule as sync.
type CalendarService struct {
	store      CalendarStore
	events     SyncEventSink
	properties PropertySource
	clock      clock.Clock
}

func NewCalendarService(store CalendarStore, events SyncEventSink, properties PropertySource, clk clock.Clock) *CalendarService {
	return &CalendarService{
		store:      store,
		events:     events,
		properties: properties,
		clock:      clk,
	}
}

func (s *CalendarService) GetCalendar(ctx context.Context, propertyID string, from, to time.Time) ([]domain.CalendarDay, error) {
	from = domain.DateOnly(from)
	to = domain.DateOnly(to)
	if !to.After(from) {
		return nil, domain.ErrInvalidRange
	}
	return s.store.GetRange(ctx, propertyID, from, to)
}

// BlockRange marks [from, to) as blocked with reason "manual-block". Days
// held by a reservation are skipped and reported, not failed.
func (s *CalendarService) BlockRange(ctx context.Context, propertyID string, from, to time.Time) (domain.SyncResult, error) {
	return s.writeRange(ctx, propertyID, from, to, true)
}

// UnblockRange reverts [from, to) to available. Days held by a reservation
// are skipped and reported.
func (s *CalendarService) UnblockRange(ctx context.Context, propertyID string, from, to time.Time) (domain.SyncResult, error) {
	return s.writeRange(ctx, propertyID, from, to, false)
}

func (s *CalendarService) writeRange(ctx context.Context, propertyID string, from, to time.Time, block bool) (domain.SyncResult, error) {
	from = domain.DateOnly(from)
	to = domain.DateOnly(to)
	if !to.After(from) {
		return domain.SyncResult{}, domain.ErrInvalidRange
	}

	property, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return domain.SyncResult{}, err
	}

	now := s.clock.Now()
	result := domain.SyncResult{PropertyID: propertyID}
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		var writeErr error
		if block {
			writeErr = s.store.UpsertDay(ctx, domain.CalendarDay{
				PropertyID: propertyID,
				Day:        day,
				Status:     domain.DayStatusBlocked,
				Reason:     domain.ReasonManualBlock,
				UpdatedAt:  now,
			})
		} else {
			writeErr = s.store.FreeDay(ctx, propertyID, day, "", now)
		}

		result.DaysProcessed++
		switch {
		case writeErr == nil:
			if block {
				result.DaysBlocked++
			} else {
				result.DaysFreed++
			}
		case writeErr == domain.ErrConflictLocalReservationWins:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: held by a reservation", domain.DateKey(day)))
		case writeErr == domain.ErrDayNotFound:
			// Unblocking a day that was never written is a no-op.
		default:
			return result, writeErr
		}
	}

	ev := domain.SyncEvent{
		ID:             newUUID(),
		OrganizationID: property.OrganizationID,
		PropertyID:     propertyID,
		Direction:      domain.SyncDirectionManual,
		Counts: domain.SyncCounts{
			Processed: result.DaysProcessed,
			Blocked:   result.DaysBlocked,
			Freed:     result.DaysFreed,
		},
		Errors:    result.Errors,
		CreatedAt: now,
	}
	if err := s.events.Append(ctx, ev); err != nil {
		return result, fmt.Errorf("record manual event: %w", err)
	}
	return result, nil
}
