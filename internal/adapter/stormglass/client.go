// Package stormglass fetches marine-weather series from the Stormglass
// point API, with cache-aside reads and a synthetic fallback when no API
// key is configured.
package stormglass

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/cache"
	"github.com/couchcryptid/beach-safety-ingest/internal/config"
	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

// APIError is a non-2xx response from the Stormglass API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stormglass API error: status %d: %s", e.StatusCode, e.Body)
}

// Client fetches raw weather series. With no API key every Fetch returns a
// synthetic series of the same shape as the provider's, so the rest of the
// service runs unmodified in development.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Stormglass client.
func NewClient(cfg *config.Config, c *cache.Cache, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.StormglassAPIKey,
		baseURL: cfg.StormglassBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		cache:    c,
		cacheTTL: cfg.CacheTTL,
		metrics:  metrics,
		logger:   logger,
	}
}

// Source names where this client's series come from.
func (c *Client) Source() string {
	if c.apiKey == "" {
		return "synthetic"
	}
	return "stormglass"
}

// Fetch returns the raw hour-indexed series for one coordinate and time
// range. Successful upstream responses are cached under a key derived from
// the exact request; error responses are never cached.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, start, end time.Time) ([]byte, error) {
	if c.apiKey == "" {
		c.metrics.FetchRequests.WithLabelValues("synthetic", "success").Inc()
		return syntheticSeries(start, end), nil
	}

	key := cacheKey(lat, lon, start, end)
	if value, ok := c.cache.Get(ctx, key); ok {
		return value, nil
	}

	timer := time.Now()
	payload, err := c.fetchUpstream(ctx, lat, lon, start, end)
	c.metrics.FetchDuration.Observe(time.Since(timer).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("stormglass", "error").Inc()
		return nil, err
	}
	c.metrics.FetchRequests.WithLabelValues("stormglass", "success").Inc()

	c.cache.Set(ctx, key, payload, c.cacheTTL)
	return payload, nil
}

func (c *Client) fetchUpstream(ctx context.Context, lat, lon float64, start, end time.Time) ([]byte, error) {
	params := url.Values{
		"lat":    {formatCoord(lat)},
		"lng":    {formatCoord(lon)},
		"params": {strings.Join(domain.KnownParameters, ",")},
		"source": {"sg"},
		"start":  {start.UTC().Format(time.RFC3339)},
		"end":    {end.UTC().Format(time.RFC3339)},
	}
	fullURL := c.baseURL + "/weather/point?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather point request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func cacheKey(lat, lon float64, start, end time.Time) string {
	return fmt.Sprintf("marine:%s:%s:%s:%s",
		formatCoord(lat), formatCoord(lon),
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
