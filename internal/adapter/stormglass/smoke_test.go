//go:build stormglass

package stormglass

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/cache"
	"github.com/couchcryptid/beach-safety-ingest/internal/config"
	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

// These tests hit the real Stormglass API and require a valid
// STORMGLASS_API_KEY env var. They consume request quota.
// Run with: go test -tags=stormglass ./internal/adapter/stormglass/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	apiKey := os.Getenv("STORMGLASS_API_KEY")
	if apiKey == "" {
		t.Fatal("STORMGLASS_API_KEY must be set to run smoke tests")
	}
	metrics := observability.NewMetricsForTesting()
	c := cache.New("", "", 0, clockwork.NewRealClock(), metrics, discardLogger())
	return NewClient(&config.Config{
		StormglassAPIKey:  apiKey,
		StormglassBaseURL: "https://api.stormglass.io/v2",
		CacheTTL:          time.Hour,
		FetchTimeout:      30 * time.Second,
	}, c, metrics, discardLogger())
}

func TestSmoke_FetchMarinaBeach(t *testing.T) {
	c := smokeClient(t)

	start := time.Now().UTC()
	payload, err := c.Fetch(context.Background(), 13.05, 80.282, start, start.Add(6*time.Hour))
	require.NoError(t, err)

	observations, err := domain.ParseSeries(payload, 1, c.Source(), domain.DefaultThresholds(), discardLogger())
	require.NoError(t, err)
	require.NotEmpty(t, observations)

	first := observations[0]
	assert.Equal(t, "stormglass", first.Source)
	assert.NotNil(t, first.WaveHeight, "open-water point should report wave height")
	assert.NotEqual(t, domain.LevelUnknown, first.SuitabilityLevel)
}
