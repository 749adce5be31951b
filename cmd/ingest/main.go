package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/cache"
	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/beach-safety-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/postgres"
	smtpadapter "github.com/couchcryptid/beach-safety-ingest/internal/adapter/smtp"
	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/stormglass"
	"github.com/couchcryptid/beach-safety-ingest/internal/config"
	"github.com/couchcryptid/beach-safety-ingest/internal/ingest"
	"github.com/couchcryptid/beach-safety-ingest/internal/notify"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

func main() {
	// Optional .env for local development; the environment wins in
	// production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	dataCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, clock, metrics, logger)
	defer dataCache.Close()

	fetcher := stormglass.NewClient(cfg, dataCache, metrics, logger)
	logger.Info("marine data client ready", "source", fetcher.Source())

	sites := postgres.NewSiteRepository(db)
	observations := postgres.NewObservationRepository(db)
	users := postgres.NewUserRepository(db)
	notifications := postgres.NewNotificationRepository(db)

	// Alert channels are feature-flagged; the notifier treats a nil
	// channel as disabled.
	var mailer notify.Mailer
	if cfg.EmailEnabled {
		m, err := smtpadapter.NewMailer(cfg, logger)
		if err != nil {
			logger.Error("failed to configure mailer", "error", err)
			os.Exit(1)
		}
		mailer = m
		logger.Info("email alerts enabled", "sender", cfg.EmailSender)
	} else {
		logger.Info("email alerts disabled")
	}

	var publisher notify.AlertPublisher
	var alertWriter *kafkaadapter.AlertWriter
	if cfg.AlertsEnabled {
		alertWriter = kafkaadapter.NewAlertWriter(cfg.KafkaBrokers, cfg.AlertsTopic, logger)
		publisher = alertWriter
		logger.Info("alert events enabled", "topic", cfg.AlertsTopic)
	} else {
		logger.Info("alert events disabled")
	}

	notifier := notify.New(users, notifications, mailer, publisher, cfg.DefaultRadiusKm, metrics, logger)

	ingestor := ingest.New(sites, observations, fetcher, notifier, ingest.Options{
		Thresholds:      cfg.SafetyThresholds(),
		StalenessWindow: cfg.StalenessWindow,
		ForecastWindow:  cfg.ForecastWindow,
	}, clock, metrics, logger)

	// Manual triggers run detached from the request; give them the fetch
	// timeout plus room for parsing, persistence, and fan-out.
	scheduler := ingest.NewScheduler(ingestor, cfg.SchedulerInterval, cfg.FetchTimeout+30*time.Second, clock, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, scheduler, scheduler, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("alert writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
