// Command check fetches and scores marine conditions for an arbitrary
// coordinate, printing one row per forecast hour. It talks to the real
// Stormglass API when STORMGLASS_API_KEY is set and generates synthetic
// data otherwise, which makes it useful both for threshold tuning and for
// verifying an API key without starting the service.
//
// Usage:
//
//	go run ./cmd/check -lat 13.05 -lon 80.28 -hours 24
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/cache"
	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/stormglass"
	"github.com/couchcryptid/beach-safety-ingest/internal/config"
	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

func main() {
	lat := flag.Float64("lat", 13.05, "latitude of the point to check")
	lon := flag.Float64("lon", 80.28, "longitude of the point to check")
	hours := flag.Int("hours", 24, "forecast window in hours")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := observability.NewMetrics()

	cfg := &config.Config{
		StormglassAPIKey:  os.Getenv("STORMGLASS_API_KEY"),
		StormglassBaseURL: sharedcfg.EnvOrDefault("STORMGLASS_BASE_URL", "https://api.stormglass.io/v2"),
		CacheTTL:          time.Hour,
		FetchTimeout:      30 * time.Second,
	}

	// One-shot run: a memory-only cache is all we need.
	dataCache := cache.New("", "", 0, clockwork.NewRealClock(), metrics, logger)
	client := stormglass.NewClient(cfg, dataCache, metrics, logger)

	now := time.Now().UTC()
	payload, err := client.Fetch(context.Background(), *lat, *lon, now, now.Add(time.Duration(*hours)*time.Hour))
	if err != nil {
		logger.Error("fetch failed", "error", err)
		os.Exit(1)
	}

	observations, err := domain.ParseSeries(payload, 0, client.Source(), domain.DefaultThresholds(), logger)
	if err != nil {
		logger.Error("parse failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("source: %s  point: %g,%g  hours: %d\n\n", client.Source(), *lat, *lon, len(observations))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tWAVE\tWIND\tCURRENT\tSCORE\tLEVEL\tWARNINGS")
	for _, obs := range observations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			obs.Timestamp.Format("2006-01-02 15:04"),
			fmtPtr(obs.WaveHeight),
			fmtPtr(obs.WindSpeed),
			fmtPtr(obs.CurrentSpeed),
			obs.SafetyScore,
			obs.SuitabilityLevel,
			strings.Join(obs.Warnings, "; "),
		)
	}
	w.Flush()
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
