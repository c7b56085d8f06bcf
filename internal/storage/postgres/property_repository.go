package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

type PropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

func (r *PropertyRepository) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	const query = `
SELECT id, organization_id, name, external_listing_id, created_at
FROM properties
WHERE id = $1`

	var p domain.Property
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.ExternalListingID, &p.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Property{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Property{}, domain.ErrPropertyNotFound
		}
		return domain.Property{}, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

// ListMapped returns every property linked to an external listing, the set
// the orchestrator iterates.
func (r *PropertyRepository) ListMapped(ctx context.Context) ([]domain.Property, error) {
	const query = `
SELECT id, organization_id, name, external_listing_id, created_at
FROM properties
WHERE external_listing_id IS NOT NULL
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list mapped properties: %w", err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.ExternalListingID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate properties: %w", rows.Err())
	}
	return properties, nil
}

func (r *PropertyRepository) CreateProperty(ctx context.Context, p domain.Property) error {
	const stmt = `
INSERT INTO properties (id, organization_id, name, external_listing_id, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, stmt, p.ID, p.OrganizationID, p.Name, p.ExternalListingID, p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("create property: listing already mapped: %w", err)
		}
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

// SetExternalListing links or unlinks a property and a PMS listing.
func (r *PropertyRepository) SetExternalListing(ctx context.Context, propertyID string, externalListingID *string) error {
	const stmt = `UPDATE properties SET external_listing_id = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt, propertyID, externalListingID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set external listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}
