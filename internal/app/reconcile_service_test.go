package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/clock"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/pms"
)

func TestReconcileService_Reconcile(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	listingID := "ext-9"
	property := domain.Property{
		ID:                "prop-1",
		OrganizationID:    "org-1",
		ExternalListingID: &listingID,
	}

	t.Run("blocks externally unavailable dates", func(t *testing.T) {
		store := newFakeCalendarStore()
		events := &fakeEventSink{}
		prober := &fakeProber{probe: func(checkIn, _ time.Time) (pms.AvailabilityProbe, error) {
			if domain.DateKey(checkIn) == "2026-03-01" {
				return pms.AvailabilityProbe{Available: false, UnavailableDates: []string{"2026-03-03", "2026-03-04"}}, nil
			}
			return pms.AvailabilityProbe{Available: true}, nil
		}}

		svc := NewReconcileService(&fakeProperties{props: []domain.Property{property}}, store, events, prober, clock.NewFixed(now), WithHorizonDays(14))

		result, err := svc.Reconcile(context.Background(), "prop-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.DaysProcessed != 14 {
			t.Fatalf("expected 14 days processed, got %d", result.DaysProcessed)
		}
		if result.DaysBlocked != 2 {
			t.Fatalf("expected 2 days blocked, got %d", result.DaysBlocked)
		}
		day, ok := store.day("prop-1", date("2026-03-03"))
		if !ok || day.Status != domain.DayStatusBlocked || day.Reason != domain.ReasonSyncedExternal {
			t.Fatalf("unexpected day: %+v", day)
		}
		if len(events.events) != 1 || events.events[0].Direction != domain.SyncDirectionInbound {
			t.Fatalf("expected one inbound event, got %+v", events.events)
		}
		if events.events[0].Counts.Blocked != 2 {
			t.Fatalf("expected event blocked count 2, got %d", events.events[0].Counts.Blocked)
		}
	})

	t.Run("booked day with a reservation is never overwritten", func(t *testing.T) {
		resID := "res-1"
		store := newFakeCalendarStore(domain.CalendarDay{
			PropertyID:    "prop-1",
			Day:           date("2026-03-02"),
			Status:        domain.DayStatusBooked,
			Reason:        domain.ReasonGuestReservation,
			ReservationID: &resID,
		})
		prober := &fakeProber{probe: func(_, _ time.Time) (pms.AvailabilityProbe, error) {
			// The PMS claims every date is bookable.
			return pms.AvailabilityProbe{Available: true}, nil
		}}

		svc := NewReconcileService(&fakeProperties{props: []domain.Property{property}}, store, &fakeEventSink{}, prober, clock.NewFixed(now), WithHorizonDays(7))

		result, err := svc.Reconcile(context.Background(), "prop-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.DaysFreed != 0 {
			t.Fatalf("expected no days freed, got %d", result.DaysFreed)
		}
		day, _ := store.day("prop-1", date("2026-03-02"))
		if day.Status != domain.DayStatusBooked {
			t.Fatalf("expected day to stay booked, got %s", day.Status)
		}
		if day.ReservationID == nil || *day.ReservationID != resID {
			t.Fatalf("expected reservation id preserved, got %+v", day.ReservationID)
		}
	})

	t.Run("frees a sync-only block when externally available", func(t *testing.T) {
		store := newFakeCalendarStore(domain.CalendarDay{
			PropertyID: "prop-1",
			Day:        date("2026-03-10"),
			Status:     domain.DayStatusBlocked,
			Reason:     domain.ReasonSyncedExternal,
		})
		prober := &fakeProber{probe: func(_, _ time.Time) (pms.AvailabilityProbe, error) {
			return pms.AvailabilityProbe{Available: true}, nil
		}}

		svc := NewReconcileService(&fakeProperties{props: []domain.Property{property}}, store, &fakeEventSink{}, prober, clock.NewFixed(now), WithHorizonDays(14))

		result, err := svc.Reconcile(context.Background(), "prop-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.DaysFreed != 1 {
			t.Fatalf("expected 1 day freed, got %d", result.DaysFreed)
		}
		day, _ := store.day("prop-1", date("2026-03-10"))
		if day.Status != domain.DayStatusAvailable {
			t.Fatalf("expected day available, got %s", day.Status)
		}
	})

	t.Run("manual blocks are not freed", func(t *testing.T) {
		store := newFakeCalendarStore(domain.CalendarDay{
			PropertyID: "prop-1",
			Day:        date("2026-03-03"),
			Status:     domain.DayStatusBlocked,
			Reason:     domain.ReasonManualBlock,
		})
		prober := &fakeProber{probe: func(_, _ time.Time) (pms.AvailabilityProbe, error) {
			return pms.AvailabilityProbe{Available: true}, nil
		}}

		svc := NewReconcileService(&fakeProperties{props: []domain.Property{property}}, store, &fakeEventSink{}, prober, clock.NewFixed(now), WithHorizonDays(7))

		result, err := svc.Reconcile(context.Background(), "prop-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.DaysFreed != 0 {
			t.Fatalf("expected no days freed, got %d", result.DaysFreed)
		}
		day, _ := store.day("prop-1", date("2026-03-03"))
		if day.Status != domain.DayStatusBlocked || day.Reason != domain.ReasonManualBlock {
			t.Fatalf("expected manual block untouched, got %+v", day)
		}
	})

	t.Run("one failed window does not abort the pass", func(t *testing.T) {
		store := newFakeCalendarStore()
		prober := &fakeProber{probe: func(checkIn, _ time.Time) (pms.AvailabilityProbe, error) {
			if domain.DateKey(checkIn) == "2026-03-15" {
				return pms.AvailabilityProbe{}, errors.New("request timed out")
			}
			return pms.AvailabilityProbe{Available: true}, nil
		}}

		svc := NewReconcileService(&fakeProperties{props: []domain.Property{property}}, store, &fakeEventSink{}, prober, clock.NewFixed(now), WithHorizonDays(28))

		result, err := svc.Reconcile(context.Background(), "prop-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.DaysProcessed != 21 {
			t.Fatalf("expected 21 days processed, got %d", result.DaysProcessed)
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected exactly one error, got %v", result.Errors)
		}
		if !strings.Contains(result.Errors[0], "2026-03-15") || !strings.Contains(result.Errors[0], "2026-03-22") {
			t.Fatalf("expected error to name the failed window, got %q", result.Errors[0])
		}
		if len(prober.calls) != 4 {
			t.Fatalf("expected 4 window probes, got %d", len(prober.calls))
		}
	})

	t.Run("unmapped property fails fast", func(t *testing.T) {
		unmapped := domain.Property{ID: "prop-2", OrganizationID: "org-1"}
		prober := &fakeProber{}

		svc := NewReconcileService(&fakeProperties{props: []domain.Property{unmapped}}, newFakeCalendarStore(), &fakeEventSink{}, prober, clock.NewFixed(now))

		_, err := svc.Reconcile(context.Background(), "prop-2")
		if err != domain.ErrNotMapped {
			t.Fatalf("expected ErrNotMapped, got %v", err)
		}
		if len(prober.calls) != 0 {
			t.Fatalf("expected no probes for an unmapped property, got %d", len(prober.calls))
		}
	})

	t.Run("whole window blocked when probe has no dates", func(t *testing.T) {
		store := newFakeCalendarStore()
		prober := &fakeProber{probe: func(_, _ time.Time) (pms.AvailabilityProbe, error) {
			return pms.AvailabilityProbe{Available: false}, nil
		}}

		svc := NewReconcileService(&fakeProperties{props: []domain.Property{property}}, store, &fakeEventSink{}, prober, clock.NewFixed(now), WithHorizonDays(7))

		result, err := svc.Reconcile(context.Background(), "prop-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.DaysBlocked != 7 {
			t.Fatalf("expected all 7 days blocked, got %d", result.DaysBlocked)
		}
	})
}
