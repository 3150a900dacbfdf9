// Command genmock writes deterministic synthetic fixtures: a FIRMS-style
// MODIS detection CSV, an occurrence CSV, and the merged fire records the
// pipeline is expected to produce from them. Expected records are computed
// with the real domain package so fixtures track resolver behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	"github.com/couchcryptid/fire-extent-etl/internal/mockdata"
	"github.com/couchcryptid/fire-extent-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

const (
	modisFile      = "modis.csv"
	occurrenceFile = "occurrences.csv"
	expectedFile   = "expected_merged.json"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory to write fixtures into")
	layout := flag.String("layout", "01/02/06", "Go time layout for occurrence dates")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2016, time.June, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fires := mockdata.DefaultFires()
	ds := mockdata.Generate(fires, mockdata.Stray)

	if err := writeFile(filepath.Join(*outDir, modisFile), func(w io.Writer) error {
		return mockdata.WriteModisCSV(w, ds.Detections)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(*outDir, occurrenceFile), func(w io.Writer) error {
		return mockdata.WriteOccurrenceCSV(w, ds.Occurrences, *layout)
	}); err != nil {
		return err
	}
	log.Printf("wrote %d detections and %d occurrences", len(ds.Detections), len(ds.Occurrences))

	expected, err := resolveAll(ds)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(*outDir, expectedFile), expected); err != nil {
		return fmt.Errorf("writing expected fixture: %w", err)
	}

	printStats(fires, expected)
	return nil
}

func resolveAll(ds mockdata.Dataset) ([]domain.FireRecord, error) {
	resolver := domain.NewResolver(domain.NewCatalog(ds.Detections), domain.ExtentThresholds)
	transformer := pipeline.NewTransformer(resolver, nil, slog.Default())

	var out []domain.FireRecord
	for _, occ := range ds.Occurrences {
		rec, ok, err := transformer.Transform(context.Background(), occ)
		if err != nil {
			return nil, fmt.Errorf("resolve %.4f,%.4f: %w", occ.Lat, occ.Lng, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(fires []mockdata.Fire, records []domain.FireRecord) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Fires generated: %d, resolved: %d\n", len(fires), len(records))
	for _, rec := range records {
		fmt.Printf("  %s start=%s end=%s peak=%s duration=%d max=%.3f dir=%s(%d)\n",
			rec.ID, rec.StartDate, rec.EndDate, rec.PeakDate, rec.Duration,
			rec.MaxSize, rec.Direction, rec.DirectionCode)
	}
}
