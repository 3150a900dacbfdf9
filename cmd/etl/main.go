package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-extent-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/fire-extent-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fire-extent-etl/internal/adapter/kafka"
	"github.com/couchcryptid/fire-extent-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/fire-extent-etl/internal/config"
	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	"github.com/couchcryptid/fire-extent-etl/internal/observability"
	"github.com/couchcryptid/fire-extent-etl/internal/pipeline"
	"github.com/google/uuid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	logger := observability.NewLogger(cfg).With("run_id", runID)
	metrics := observability.NewMetrics()

	if err := run(cfg, runID, logger, metrics); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, runID string, logger *slog.Logger, metrics *observability.Metrics) error {
	catalog, stats, err := csvfile.LoadCatalog(cfg.CatalogPath, logger)
	if err != nil {
		return err
	}
	metrics.CatalogDetections.Set(float64(catalog.Len()))
	logger.Info("catalog ready", "path", cfg.CatalogPath, "detections", stats.Loaded, "skipped", stats.Skipped)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	reader, err := csvfile.OpenOccurrences(cfg.OccurrencePath, cfg.OccurrenceDateLayout, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	csvWriter, err := csvfile.CreateWriter(cfg.OutputPath, reader.PassthroughColumns())
	if err != nil {
		return err
	}
	sinks := []pipeline.Sink{{Name: "csv", Loader: csvWriter}}

	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, runID, logger)
		sinks = append(sinks, pipeline.Sink{Name: "kafka", Loader: kafkaWriter})
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	resolver := domain.NewResolver(catalog, cfg.Thresholds())
	transformer := pipeline.NewTransformer(resolver, geocoder, logger)
	p := pipeline.New(reader, transformer, sinks, logger, metrics, pipeline.Options{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, resolver, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// The pipeline runs to the end of the occurrence listing unless a signal
	// arrives first.
	runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline error", "error", runErr)
	}
	logger.Info("shutting down", "records_written", csvWriter.Written(), "output", cfg.OutputPath)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := csvWriter.Close(); err != nil {
		logger.Error("csv writer close error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}
