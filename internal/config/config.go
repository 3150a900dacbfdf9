package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxWorkers = 64

// Config holds all service settings, populated from environment variables.
type Config struct {
	CatalogPath          string
	OccurrencePath       string
	OutputPath           string
	OccurrenceDateLayout string

	FirstRecThreshold    float64
	AdjacentRecThreshold float64

	Workers            int
	BatchSize          int
	BatchFlushInterval time.Duration

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mapbox reverse geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Thresholds returns the extent walk thresholds.
func (c *Config) Thresholds() domain.Thresholds {
	return domain.Thresholds{
		FirstRecord:    c.FirstRecThreshold,
		AdjacentRecord: c.AdjacentRecThreshold,
	}
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	firstRec, err := parseThreshold("FIRST_REC_THRESHOLD", domain.ExtentThresholds.FirstRecord)
	if err != nil {
		return nil, err
	}
	adjacentRec, err := parseThreshold("ADJACENT_REC_THRESHOLD", domain.ExtentThresholds.AdjacentRecord)
	if err != nil {
		return nil, err
	}

	mapboxCacheSize := parseMapboxCacheSize()

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		CatalogPath:          sharedcfg.EnvOrDefault("CATALOG_PATH", "data/modis.csv"),
		OccurrencePath:       sharedcfg.EnvOrDefault("OCCURRENCE_PATH", "data/occurrences.csv"),
		OutputPath:           sharedcfg.EnvOrDefault("OUTPUT_PATH", "output/merged.csv"),
		OccurrenceDateLayout: sharedcfg.EnvOrDefault("OCCURRENCE_DATE_LAYOUT", "01/02/06"),
		FirstRecThreshold:    firstRec,
		AdjacentRecThreshold: adjacentRec,
		Workers:              workers,
		BatchSize:            batchSize,
		BatchFlushInterval:   flushInterval,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "fire-extents"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseWorkers() (int, error) {
	s := sharedcfg.EnvOrDefault("WORKERS", "4")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxWorkers {
		return 0, fmt.Errorf("invalid WORKERS: must be 1-%d", maxWorkers)
	}
	return n, nil
}

func parseThreshold(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number of degrees", key)
	}
	return v, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
