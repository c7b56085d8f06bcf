package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

type CalendarRepository struct {
	pool *pgxpool.Pool
}

func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

func (r *CalendarRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// UpsertDay writes one calendar day as a single conditional statement. A day
// held by a different local reservation is never overwritten: the update
// clause only fires when the stored reservation_id is null or matches the
// incoming one, so concurrent writers cannot race past the check.
func (r *CalendarRepository) UpsertDay(ctx context.Context, day domain.CalendarDay) error {
	const stmt = `
INSERT INTO calendar_days (property_id, day, status, reason, reservation_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (property_id, day) DO UPDATE
SET status = EXCLUDED.status,
    reason = EXCLUDED.reason,
    reservation_id = EXCLUDED.reservation_id,
    updated_at = EXCLUDED.updated_at
WHERE calendar_days.reservation_id IS NULL
   OR calendar_days.reservation_id = EXCLUDED.reservation_id`

	tag, err := r.exec(ctx, stmt,
		day.PropertyID,
		day.Day,
		day.Status,
		day.Reason,
		day.ReservationID,
		day.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPropertyNotFound
		}
		return fmt.Errorf("upsert calendar day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflictLocalReservationWins
	}
	return nil
}

// FreeDay reverts a day to available. Days held by a reservation are refused.
func (r *CalendarRepository) FreeDay(ctx context.Context, propertyID string, day time.Time, reason string, now time.Time) error {
	const stmt = `
UPDATE calendar_days
SET status = 'available', reason = $3, reservation_id = NULL, updated_at = $4
WHERE property_id = $1 AND day = $2 AND reservation_id IS NULL`

	tag, err := r.exec(ctx, stmt, propertyID, day, reason, now)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("free calendar day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.dayExists(ctx, propertyID, day)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrConflictLocalReservationWins
		}
		return domain.ErrDayNotFound
	}
	return nil
}

// GetRange returns the stored days for [from, to) ordered by date.
func (r *CalendarRepository) GetRange(ctx context.Context, propertyID string, from, to time.Time) ([]domain.CalendarDay, error) {
	const query = `
SELECT property_id, day, status, reason, reservation_id, updated_at
FROM calendar_days
WHERE property_id = $1 AND day >= $2 AND day < $3
ORDER BY day ASC`

	rows, err := r.query(ctx, query, propertyID, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("get calendar range: %w", err)
	}
	defer rows.Close()

	var days []domain.CalendarDay
	for rows.Next() {
		var d domain.CalendarDay
		var status string
		if err := rows.Scan(&d.PropertyID, &d.Day, &status, &d.Reason, &d.ReservationID, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan calendar day: %w", err)
		}
		d.Status = domain.DayStatus(status)
		d.Day = domain.DateOnly(d.Day)
		days = append(days, d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate calendar days: %w", rows.Err())
	}
	return days, nil
}

func (r *CalendarRepository) dayExists(ctx context.Context, propertyID string, day time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM calendar_days WHERE property_id = $1 AND day = $2)`
	var exists bool
	if err := r.queryRow(ctx, query, propertyID, day).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check calendar day: %w", err)
	}
	return exists, nil
}

func (r *CalendarRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CalendarRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CalendarRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
