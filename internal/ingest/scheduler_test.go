package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

// countingSiteRepo counts ListActive calls so tests can observe rounds.
type countingSiteRepo struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSiteRepo) GetByID(_ context.Context, _ int64) (*domain.Site, error) {
	return nil, nil
}

func (c *countingSiteRepo) ListActive(_ context.Context) ([]domain.Site, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil, nil
}

func (c *countingSiteRepo) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestScheduler(sites domain.SiteRepository, interval time.Duration) *Scheduler {
	ingestor := New(sites, &mockObservationRepo{}, &mockFetcher{payload: series()}, &mockNotifier{}, Options{
		Thresholds:      domain.DefaultThresholds(),
		StalenessWindow: 3 * time.Hour,
		ForecastWindow:  48 * time.Hour,
	}, clockwork.NewRealClock(), observability.NewMetricsForTesting(), discardLogger())
	return NewScheduler(ingestor, interval, time.Second, clockwork.NewRealClock(), discardLogger())
}

func TestSchedulerRunsImmediatelyAndOnInterval(t *testing.T) {
	sites := &countingSiteRepo{}
	scheduler := newTestScheduler(sites, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	require.NoError(t, scheduler.Run(ctx))

	// One immediate round plus at least two ticks.
	assert.GreaterOrEqual(t, sites.count(), 3)
}

func TestSchedulerReadiness(t *testing.T) {
	sites := &countingSiteRepo{}
	scheduler := newTestScheduler(sites, time.Hour)

	require.Error(t, scheduler.CheckReadiness(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = scheduler.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return scheduler.CheckReadiness(context.Background()) == nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSchedulerTriggerIngest(t *testing.T) {
	sites := singleSite()
	observations := &mockObservationRepo{}
	fetcher := &mockFetcher{payload: series(sgHour(baseTime, map[string]float64{"waveHeight": 0.5}))}
	ingestor := New(sites, observations, fetcher, &mockNotifier{}, Options{
		Thresholds:      domain.DefaultThresholds(),
		StalenessWindow: 3 * time.Hour,
		ForecastWindow:  48 * time.Hour,
	}, clockwork.NewFakeClockAt(baseTime), observability.NewMetricsForTesting(), discardLogger())
	scheduler := NewScheduler(ingestor, time.Hour, time.Second, clockwork.NewRealClock(), discardLogger())

	scheduler.TriggerIngest(1)

	assert.Eventually(t, func() bool {
		return observations.count() == 1
	}, time.Second, 5*time.Millisecond)
}
