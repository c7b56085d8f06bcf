package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	const query = `
SELECT id, property_id, guest_name, guest_email, guest_phone, notes,
       check_in, check_out, guest_count, external_reservation_id, created_at
FROM reservations
WHERE id = $1`

	var res domain.Reservation
	err := r.queryRow(ctx, query, id).Scan(
		&res.ID,
		&res.PropertyID,
		&res.GuestName,
		&res.GuestEmail,
		&res.GuestPhone,
		&res.Notes,
		&res.CheckIn,
		&res.CheckOut,
		&res.GuestCount,
		&res.ExternalReservationID,
		&res.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	res.CheckIn = domain.DateOnly(res.CheckIn)
	res.CheckOut = domain.DateOnly(res.CheckOut)
	return res, nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, property_id, guest_name, guest_email, guest_phone, notes,
                          check_in, check_out, guest_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.PropertyID,
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.Notes,
		res.CheckIn,
		res.CheckOut,
		res.GuestCount,
		res.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPropertyNotFound
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// SetExternalID persists the idempotency marker. The conditional update only
// fires when no marker exists yet; a lost race surfaces as ErrAlreadySynced
// so the caller can re-read the winning external id.
func (r *ReservationRepository) SetExternalID(ctx context.Context, id, externalID string) error {
	const stmt = `
UPDATE reservations
SET external_reservation_id = $2
WHERE id = $1 AND external_reservation_id IS NULL`

	tag, err := r.exec(ctx, stmt, id, externalID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set external reservation id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySynced
	}
	return nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
