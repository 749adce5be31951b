package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
)

// ObservationRepository is the append-only weather store.
type ObservationRepository struct {
	db *sql.DB
}

// NewObservationRepository constructs an observation repository.
func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

const observationColumns = `
	id, site_id, timestamp, source,
	wave_height, wave_direction, wave_period,
	swell_height, swell_direction, swell_period,
	wind_speed, wind_direction, wind_gust,
	water_temperature, air_temperature,
	current_speed, current_direction,
	chlorophyll, salinity, ph, oxygen,
	raw_payload, safety_score, suitability_level, created_at`

// Append inserts one observation. The store never updates or deletes.
func (r *ObservationRepository) Append(ctx context.Context, obs *domain.Observation) error {
	const query = `
		INSERT INTO weather_observations (
			site_id, timestamp, source,
			wave_height, wave_direction, wave_period,
			swell_height, swell_direction, swell_period,
			wind_speed, wind_direction, wind_gust,
			water_temperature, air_temperature,
			current_speed, current_direction,
			chlorophyll, salinity, ph, oxygen,
			raw_payload, safety_score, suitability_level, created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9,
			$10, $11, $12,
			$13, $14,
			$15, $16,
			$17, $18, $19, $20,
			$21, $22, $23, now()
		)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		obs.SiteID, obs.Timestamp, obs.Source,
		obs.WaveHeight, obs.WaveDirection, obs.WavePeriod,
		obs.SwellHeight, obs.SwellDirection, obs.SwellPeriod,
		obs.WindSpeed, obs.WindDirection, obs.WindGust,
		obs.WaterTemperature, obs.AirTemperature,
		obs.CurrentSpeed, obs.CurrentDirection,
		obs.Chlorophyll, obs.Salinity, obs.PH, obs.Oxygen,
		obs.RawPayload, obs.SafetyScore, string(obs.SuitabilityLevel),
	).Scan(&obs.ID, &obs.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert observation for site %d: %w", obs.SiteID, err)
	}
	return nil
}

// Latest returns the newest observation for a site, or (nil, nil) when the
// site has no history.
func (r *ObservationRepository) Latest(ctx context.Context, siteID int64) (*domain.Observation, error) {
	query := `
		SELECT` + observationColumns + `
		FROM weather_observations
		WHERE site_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`

	obs, err := scanObservation(r.db.QueryRowContext(ctx, query, siteID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest observation for site %d: %w", siteID, err)
	}
	return obs, nil
}

// Range returns observations for a site within [start, end], newest first.
func (r *ObservationRepository) Range(ctx context.Context, siteID int64, start, end time.Time) ([]domain.Observation, error) {
	query := `
		SELECT` + observationColumns + `
		FROM weather_observations
		WHERE site_id = $1 AND timestamp BETWEEN $2 AND $3
		ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query, siteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query observations for site %d: %w", siteID, err)
	}
	defer rows.Close()

	var observations []domain.Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		observations = append(observations, *obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return observations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(row rowScanner) (*domain.Observation, error) {
	var obs domain.Observation
	var level string
	err := row.Scan(
		&obs.ID, &obs.SiteID, &obs.Timestamp, &obs.Source,
		&obs.WaveHeight, &obs.WaveDirection, &obs.WavePeriod,
		&obs.SwellHeight, &obs.SwellDirection, &obs.SwellPeriod,
		&obs.WindSpeed, &obs.WindDirection, &obs.WindGust,
		&obs.WaterTemperature, &obs.AirTemperature,
		&obs.CurrentSpeed, &obs.CurrentDirection,
		&obs.Chlorophyll, &obs.Salinity, &obs.PH, &obs.Oxygen,
		&obs.RawPayload, &obs.SafetyScore, &level, &obs.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	obs.SuitabilityLevel = domain.SuitabilityLevel(level)
	return &obs, nil
}
