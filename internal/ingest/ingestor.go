// Package ingest orchestrates per-site marine-weather ingestion and its
// schedule.
package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

// Fetcher returns the raw weather series for one coordinate and time range.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64, start, end time.Time) ([]byte, error)
	Source() string
}

// Notifier fans a dangerous-condition alert out to nearby users.
type Notifier interface {
	NotifyNearbyUsers(ctx context.Context, site domain.Site, warningMessage string, level domain.SuitabilityLevel) ([]domain.Notification, error)
}

// Ingestion outcomes, used as the metric label.
const (
	outcomeSuccess = "success"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// Options holds the tunables of the ingestion flow.
type Options struct {
	Thresholds      domain.Thresholds
	StalenessWindow time.Duration
	ForecastWindow  time.Duration
}

// Ingestor runs the fetch-score-store-notify flow for sites.
type Ingestor struct {
	sites        domain.SiteRepository
	observations domain.ObservationRepository
	fetcher      Fetcher
	notifier     Notifier
	opts         Options
	clock        clockwork.Clock
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// New creates an Ingestor.
func New(
	sites domain.SiteRepository,
	observations domain.ObservationRepository,
	fetcher Fetcher,
	notifier Notifier,
	opts Options,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Ingestor {
	return &Ingestor{
		sites:        sites,
		observations: observations,
		fetcher:      fetcher,
		notifier:     notifier,
		opts:         opts,
		clock:        clock,
		metrics:      metrics,
		logger:       logger,
	}
}

// IngestSite runs one ingestion for a site. It reports true unless the site
// is unknown or the flow failed; a skip inside the staleness window counts
// as success with zero fetches.
func (i *Ingestor) IngestSite(ctx context.Context, siteID int64) bool {
	start := time.Now()
	outcome := i.ingestSite(ctx, siteID)
	i.metrics.IngestOutcomes.WithLabelValues(outcome).Inc()
	i.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	return outcome != outcomeFailed
}

func (i *Ingestor) ingestSite(ctx context.Context, siteID int64) string {
	site, err := i.sites.GetByID(ctx, siteID)
	if err != nil {
		i.logger.Error("failed to load site", "site_id", siteID, "error", err)
		return outcomeFailed
	}
	if site == nil {
		i.logger.Error("site not found", "site_id", siteID)
		return outcomeFailed
	}

	latest, err := i.observations.Latest(ctx, siteID)
	if err != nil {
		i.logger.Error("failed to load latest observation", "site_id", siteID, "error", err)
		return outcomeFailed
	}

	now := i.clock.Now().UTC()
	if latest != nil && now.Sub(latest.Timestamp) < i.opts.StalenessWindow {
		i.logger.Info("recent data present, skipping fetch",
			"site_id", siteID, "latest", latest.Timestamp, "staleness_window", i.opts.StalenessWindow)
		return outcomeSkipped
	}

	payload, err := i.fetcher.Fetch(ctx, site.Latitude, site.Longitude, now, now.Add(i.opts.ForecastWindow))
	if err != nil {
		i.logger.Error("failed to fetch weather data", "site_id", siteID, "error", err)
		return outcomeFailed
	}

	records, err := domain.ParseSeries(payload, siteID, i.fetcher.Source(), i.opts.Thresholds, i.logger)
	if err != nil {
		i.logger.Error("failed to parse weather series", "site_id", siteID, "error", err)
		return outcomeFailed
	}
	if len(records) == 0 {
		i.logger.Error("weather series contained no usable records", "site_id", siteID)
		return outcomeFailed
	}

	for idx := range records {
		record := &records[idx]
		if err := i.observations.Append(ctx, record); err != nil {
			i.logger.Error("failed to store observation",
				"site_id", siteID, "timestamp", record.Timestamp, "error", err)
			return outcomeFailed
		}
		i.metrics.ObservationsStored.Inc()

		if shouldNotify(record) {
			message := strings.Join(record.Warnings, " ")
			if _, err := i.notifier.NotifyNearbyUsers(ctx, *site, message, record.SuitabilityLevel); err != nil {
				i.logger.Warn("alert fan-out failed", "site_id", siteID, "error", err)
			}
		}
	}

	i.logger.Info("site ingested",
		"site_id", siteID, "site", site.Name, "records", len(records), "source", i.fetcher.Source())
	return outcomeSuccess
}

func shouldNotify(obs *domain.Observation) bool {
	if obs.SuitabilityLevel != domain.LevelWarning && obs.SuitabilityLevel != domain.LevelDanger {
		return false
	}
	return len(obs.Warnings) > 0
}

// IngestAll ingests every active site concurrently. Failures are isolated
// per site; the returned counts feed one summary log line per round.
func (i *Ingestor) IngestAll(ctx context.Context) (succeeded, failed int) {
	sites, err := i.sites.ListActive(ctx)
	if err != nil {
		i.logger.Error("failed to list active sites", "error", err)
		return 0, 0
	}
	if len(sites) == 0 {
		i.logger.Info("no active sites to ingest")
		return 0, 0
	}

	results := make(chan bool, len(sites))
	var wg sync.WaitGroup
	for _, site := range sites {
		wg.Add(1)
		go func(siteID int64) {
			defer wg.Done()
			results <- i.IngestSite(ctx, siteID)
		}(site.ID)
	}
	wg.Wait()
	close(results)

	for ok := range results {
		if ok {
			succeeded++
		} else {
			failed++
		}
	}

	i.logger.Info("ingestion round complete", "sites", len(sites), "succeeded", succeeded, "failed", failed)
	return succeeded, failed
}
