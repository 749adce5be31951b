package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
)

// SiteRepository reads monitored sites from PostgreSQL.
type SiteRepository struct {
	db *sql.DB
}

// NewSiteRepository constructs a site repository.
func NewSiteRepository(db *sql.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// GetByID loads one site, or (nil, nil) when it does not exist.
func (r *SiteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	const query = `
		SELECT id, name, latitude, longitude, state, city, is_active
		FROM sites
		WHERE id = $1`

	var site domain.Site
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&site.ID, &site.Name, &site.Latitude, &site.Longitude,
		&site.State, &site.City, &site.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query site %d: %w", id, err)
	}
	return &site, nil
}

// ListActive returns all sites currently enabled for ingestion.
func (r *SiteRepository) ListActive(ctx context.Context) ([]domain.Site, error) {
	const query = `
		SELECT id, name, latitude, longitude, state, city, is_active
		FROM sites
		WHERE is_active
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active sites: %w", err)
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		var site domain.Site
		if err := rows.Scan(
			&site.ID, &site.Name, &site.Latitude, &site.Longitude,
			&site.State, &site.City, &site.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}
