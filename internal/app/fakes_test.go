package app

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/pms"
)

// Shared in-memory fakes implementing the app-side interfaces. The calendar
// fake enforces the same conflict rule as the Postgres implementation.

type fakeCalendarStore struct {
	days map[string]domain.CalendarDay
}

func newFakeCalendarStore(days ...domain.CalendarDay) *fakeCalendarStore {
	s := &fakeCalendarStore{days: make(map[string]domain.CalendarDay)}
	for _, d := range days {
		d.Day = domain.DateOnly(d.Day)
		s.days[dayKey(d.PropertyID, d.Day)] = d
	}
	return s
}

func dayKey(propertyID string, day time.Time) string {
	return propertyID + "|" + domain.DateKey(day)
}

func (s *fakeCalendarStore) UpsertDay(_ context.Context, day domain.CalendarDay) error {
	day.Day = domain.DateOnly(day.Day)
	key := dayKey(day.PropertyID, day.Day)
	if existing, ok := s.days[key]; ok && existing.ReservationID != nil {
		if day.ReservationID == nil || *day.ReservationID != *existing.ReservationID {
			return domain.ErrConflictLocalReservationWins
		}
	}
	s.days[key] = day
	return nil
}

func (s *fakeCalendarStore) FreeDay(_ context.Context, propertyID string, day time.Time, reason string, now time.Time) error {
	key := dayKey(propertyID, domain.DateOnly(day))
	existing, ok := s.days[key]
	if !ok {
		return domain.ErrDayNotFound
	}
	if existing.ReservationID != nil {
		return domain.ErrConflictLocalReservationWins
	}
	existing.Status = domain.DayStatusAvailable
	existing.Reason = reason
	existing.UpdatedAt = now
	s.days[key] = existing
	return nil
}

func (s *fakeCalendarStore) GetRange(_ context.Context, propertyID string, from, to time.Time) ([]domain.CalendarDay, error) {
	var out []domain.CalendarDay
	for _, d := range s.days {
		if d.PropertyID != propertyID {
			continue
		}
		if d.Day.Before(from) || !d.Day.Before(to) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *fakeCalendarStore) day(propertyID string, day time.Time) (domain.CalendarDay, bool) {
	d, ok := s.days[dayKey(propertyID, domain.DateOnly(day))]
	return d, ok
}

type fakeEventSink struct {
	events []domain.SyncEvent
	err    error
}

func (s *fakeEventSink) Append(_ context.Context, ev domain.SyncEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

type fakeProperties struct {
	props []domain.Property
}

func (p *fakeProperties) GetProperty(_ context.Context, id string) (domain.Property, error) {
	for _, prop := range p.props {
		if prop.ID == id {
			return prop, nil
		}
	}
	return domain.Property{}, domain.ErrPropertyNotFound
}

func (p *fakeProperties) ListMapped(_ context.Context) ([]domain.Property, error) {
	var out []domain.Property
	for _, prop := range p.props {
		if prop.ExternalListingID != nil {
			out = append(out, prop)
		}
	}
	return out, nil
}

type probeCall struct {
	listingID string
	checkIn   time.Time
	checkOut  time.Time
}

type fakeProber struct {
	calls []probeCall
	probe func(checkIn, checkOut time.Time) (pms.AvailabilityProbe, error)
}

func (p *fakeProber) GetPricing(_ context.Context, listingID string, checkIn, checkOut time.Time, _ int) (pms.AvailabilityProbe, error) {
	p.calls = append(p.calls, probeCall{listingID: listingID, checkIn: checkIn, checkOut: checkOut})
	if p.probe != nil {
		return p.probe(checkIn, checkOut)
	}
	return pms.AvailabilityProbe{Available: true}, nil
}

type fakeReservations struct {
	reservations map[string]domain.Reservation
}

func newFakeReservations(list ...domain.Reservation) *fakeReservations {
	r := &fakeReservations{reservations: make(map[string]domain.Reservation)}
	for _, res := range list {
		r.reservations[res.ID] = res
	}
	return r
}

func (r *fakeReservations) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return res, nil
}

func (r *fakeReservations) SetExternalID(_ context.Context, id, externalID string) error {
	res, ok := r.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if res.ExternalReservationID != nil {
		return domain.ErrAlreadySynced
	}
	res.ExternalReservationID = &externalID
	r.reservations[id] = res
	return nil
}

type fakeCreator struct {
	calls   int
	lastReq pms.CreateReservationRequest
	id      string
	err     error
}

func (c *fakeCreator) CreateReservation(_ context.Context, req pms.CreateReservationRequest) (string, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return "", c.err
	}
	return c.id, nil
}

type scriptedReconciler struct {
	seen   []string
	fail   map[string]bool
	onCall func(id string)
}

func (r *scriptedReconciler) Reconcile(_ context.Context, propertyID string) (domain.SyncResult, error) {
	r.seen = append(r.seen, propertyID)
	if r.onCall != nil {
		r.onCall(propertyID)
	}
	if r.fail[propertyID] {
		return domain.SyncResult{}, errors.New("probe failed")
	}
	return domain.SyncResult{PropertyID: propertyID, DaysProcessed: 7}, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeSnapshots struct {
	snap domain.ListingSnapshot
	err  error
}

func (f *fakeSnapshots) Get(_ context.Context, _ string) (domain.ListingSnapshot, error) {
	if f.err != nil {
		return domain.ListingSnapshot{}, f.err
	}
	return f.snap, nil
}
