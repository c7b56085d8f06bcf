package app

import (
	"context"
	"fmt"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/clock"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/pms"
)

// ReservationStore loads reservations and persists the idempotency marker.
type ReservationStore interface {
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	SetExternalID(ctx context.Context, id, externalID string) error
}

// ReservationCreator creates the booking on the PMS side.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, req pms.CreateReservationRequest) (string, error)
}

// PublishService pushes a confirmed reservation to the PMS exactly once.
// Retrying a publish that already succeeded is a no-op returning the stored
// external id. The service never retries failures itself; that belongs to
// the booking-confirmation workflow.
type PublishService struct {
	reservations ReservationStore
	properties   PropertySource
	store        CalendarStore
	events       SyncEventSink
	creator      ReservationCreator
	clock        clock.Clock
}

func NewPublishService(reservations ReservationStore, properties PropertySource, store CalendarStore, events SyncEventSink, creator ReservationCreator, clk clock.Clock) *PublishService {
	return &PublishService{
		reservations: reservations,
		properties:   properties,
		store:        store,
		events:       events,
		creator:      creator,
		clock:        clk,
	}
}

func (s *PublishService) Publish(ctx context.Context, reservationID string) (domain.PublishResult, error) {
	res, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return domain.PublishResult{}, err
	}

	if res.ExternalReservationID != nil {
		return domain.PublishResult{
			ReservationID:         res.ID,
			ExternalReservationID: *res.ExternalReservationID,
			AlreadySynced:         true,
		}, nil
	}

	property, err := s.properties.GetProperty(ctx, res.PropertyID)
	if err != nil {
		return domain.PublishResult{}, err
	}
	if property.ExternalListingID == nil {
		return domain.PublishResult{}, domain.ErrNotMapped
	}

	now := s.clock.Now()
	nights := domain.Nights(res.CheckIn, res.CheckOut)

	// Book the local calendar first so an inbound pass can never free these
	// days while the PMS call is in flight.
	resID := res.ID
	for day := res.CheckIn; day.Before(res.CheckOut); day = day.AddDate(0, 0, 1) {
		err := s.store.UpsertDay(ctx, domain.CalendarDay{
			PropertyID:    res.PropertyID,
			Day:           day,
			Status:        domain.DayStatusBooked,
			Reason:        domain.ReasonGuestReservation,
			ReservationID: &resID,
			UpdatedAt:     now,
		})
		if err != nil {
			s.recordOutcome(ctx, property, res, 0, fmt.Sprintf("book %s: %v", domain.DateKey(day), err))
			return domain.PublishResult{}, fmt.Errorf("book calendar day %s: %w", domain.DateKey(day), err)
		}
	}

	externalID, err := s.creator.CreateReservation(ctx, pms.CreateReservationRequest{
		ListingID:  *property.ExternalListingID,
		CheckIn:    domain.DateKey(res.CheckIn),
		CheckOut:   domain.DateKey(res.CheckOut),
		GuestCount: res.GuestCount,
		Name:       res.GuestName,
		Email:      res.GuestEmail,
		Phone:      res.GuestPhone,
		Notes:      res.Notes,
	})
	if err != nil {
		s.recordOutcome(ctx, property, res, 0, err.Error())
		return domain.PublishResult{}, fmt.Errorf("publish reservation %s: %w", res.ID, err)
	}

	if err := s.reservations.SetExternalID(ctx, res.ID, externalID); err != nil {
		if err == domain.ErrAlreadySynced {
			// A concurrent publish won the marker race; return its id.
			current, readErr := s.reservations.GetReservation(ctx, res.ID)
			if readErr == nil && current.ExternalReservationID != nil {
				return domain.PublishResult{
					ReservationID:         res.ID,
					ExternalReservationID: *current.ExternalReservationID,
					AlreadySynced:         true,
				}, nil
			}
		}
		return domain.PublishResult{}, fmt.Errorf("persist external id: %w", err)
	}

	s.recordOutcome(ctx, property, res, nights, "")
	return domain.PublishResult{
		ReservationID:         res.ID,
		ExternalReservationID: externalID,
	}, nil
}

func (s *PublishService) recordOutcome(ctx context.Context, property domain.Property, res domain.Reservation, nights int, errMsg string) {
	ev := domain.SyncEvent{
		ID:             newUUID(),
		OrganizationID: property.OrganizationID,
		PropertyID:     res.PropertyID,
		Direction:      domain.SyncDirectionOutbound,
		Counts:         domain.SyncCounts{Processed: nights, Blocked: nights},
		CreatedAt:      s.clock.Now(),
	}
	if errMsg != "" {
		ev.Counts = domain.SyncCounts{}
		ev.Errors = []string{errMsg}
	}
	// Audit append failure must not mask the publish outcome.
	_ = s.events.Append(ctx, ev)
}
