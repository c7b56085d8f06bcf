package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// SyncEventRepository is the append-only audit sink. Events are never
// updated or deleted.
type SyncEventRepository struct {
	pool *pgxpool.Pool
}

func NewSyncEventRepository(pool *pgxpool.Pool) *SyncEventRepository {
	return &SyncEventRepository{pool: pool}
}

func (r *SyncEventRepository) Append(ctx context.Context, ev domain.SyncEvent) error {
	const stmt = `
INSERT INTO sync_events (id, organization_id, property_id, direction, processed, blocked, freed, errors, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	errs := ev.Errors
	if errs == nil {
		errs = []string{}
	}
	_, err := r.pool.Exec(ctx, stmt,
		ev.ID,
		ev.OrganizationID,
		ev.PropertyID,
		ev.Direction,
		ev.Counts.Processed,
		ev.Counts.Blocked,
		ev.Counts.Freed,
		errs,
		ev.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPropertyNotFound
		}
		return fmt.Errorf("append sync event: %w", err)
	}
	return nil
}

func (r *SyncEventRepository) ListByProperty(ctx context.Context, propertyID string, limit int) ([]domain.SyncEvent, error) {
	const query = `
SELECT id, organization_id, property_id, direction, processed, blocked, freed, errors, created_at
FROM sync_events
WHERE property_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.pool.Query(ctx, query, propertyID, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list sync events: %w", err)
	}
	defer rows.Close()

	var events []domain.SyncEvent
	for rows.Next() {
		var ev domain.SyncEvent
		var direction string
		if err := rows.Scan(
			&ev.ID,
			&ev.OrganizationID,
			&ev.PropertyID,
			&direction,
			&ev.Counts.Processed,
			&ev.Counts.Blocked,
			&ev.Counts.Freed,
			&ev.Errors,
			&ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sync event: %w", err)
		}
		ev.Direction = domain.SyncDirection(direction)
		events = append(events, ev)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate sync events: %w", rows.Err())
	}
	return events, nil
}
