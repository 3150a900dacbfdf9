// Command validate checks a merged output CSV against its inputs: header
// schema, per-row extent invariants, and a full recomputation of every row
// from the MODIS catalog and occurrence listing.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -catalog data/modis.csv \
//	  -occurrences data/occurrences.csv \
//	  -merged output/merged.csv
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	"github.com/couchcryptid/fire-extent-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

const maxErrorsShown = 20

// column positions in a merged row
const (
	colReportDate = 2
	colStartDate  = 3
	colEndDate    = 4
	colPeakDate   = 5
	colDuration   = 6
	colDirection  = 11
	colDirCode    = 12
)

func main() {
	catalogPath := flag.String("catalog", "", "MODIS detection CSV")
	occurrencePath := flag.String("occurrences", "", "occurrence CSV")
	mergedPath := flag.String("merged", "", "merged output CSV to validate")
	layout := flag.String("layout", "01/02/06", "Go time layout for occurrence dates")
	firstRec := flag.Float64("first-rec", domain.ExtentThresholds.FirstRecord, "first record threshold (degrees)")
	adjacentRec := flag.Float64("adjacent-rec", domain.ExtentThresholds.AdjacentRecord, "adjacent record threshold (degrees)")
	flag.Parse()

	if *catalogPath == "" || *occurrencePath == "" || *mergedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	th := domain.Thresholds{FirstRecord: *firstRec, AdjacentRecord: *adjacentRec}
	if code := run(*catalogPath, *occurrencePath, *mergedPath, *layout, th); code != 0 {
		os.Exit(code)
	}
}

func run(catalogPath, occurrencePath, mergedPath, layout string, th domain.Thresholds) int {
	// Pin the clock; ProcessedAt is not part of the CSV but keeps records stable.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2016, time.June, 1, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Fire Extent Output Validation ===")
	fmt.Println()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog, _, err := csvfile.LoadCatalog(catalogPath, quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	expected, err := recompute(catalog, occurrencePath, layout, th, quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: recompute: %v\n", err)
		return 1
	}

	merged, err := readCSV(mergedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load merged output: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(merged, expected),
		validateRowInvariants(merged),
		validateRecomputation(merged, expected),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Catalog: %d detections over %d days; merged rows: %d, expected rows: %d\n",
		catalog.Len(), catalog.Days(), max(len(merged)-1, 0), max(len(expected)-1, 0))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrorsShown {
				fmt.Printf("  ... and %d more\n", len(p.errors)-maxErrorsShown)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

// recompute runs every occurrence through the resolver and renders the
// result with the same writer the pipeline uses.
func recompute(catalog *domain.Catalog, occurrencePath, layout string, th domain.Thresholds, logger *slog.Logger) ([][]string, error) {
	reader, err := csvfile.OpenOccurrences(occurrencePath, layout, logger)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var buf bytes.Buffer
	writer, err := csvfile.NewWriter(&buf, reader.PassthroughColumns())
	if err != nil {
		return nil, err
	}

	transformer := pipeline.NewTransformer(domain.NewResolver(catalog, th), nil, logger)
	ctx := context.Background()
	for {
		batch, err := reader.ExtractBatch(ctx, 100)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, occ := range batch {
			rec, ok, err := transformer.Transform(ctx, occ)
			if err != nil || !ok {
				continue
			}
			if err := writer.LoadBatch(ctx, []domain.FireRecord{rec}); err != nil {
				return nil, err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return csv.NewReader(&buf).ReadAll()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

func validateSchema(merged, expected [][]string) *phase {
	p := &phase{name: "Phase 1: Merged header schema"}
	if len(merged) == 0 {
		p.errorf("merged output is empty (no header)")
		return p
	}
	if diff := cmp.Diff(expected[0], merged[0]); diff != "" {
		p.errorf("header mismatch (-want +got):\n%s", diff)
	}
	return p
}

func validateRowInvariants(merged [][]string) *phase {
	p := &phase{name: "Phase 2: Row extent invariants"}
	for i, row := range merged[min(1, len(merged)):] {
		line := i + 2
		if len(row) < len(csvfile.MergedColumns) {
			p.errorf("line %d: %d columns, want at least %d", line, len(row), len(csvfile.MergedColumns))
			continue
		}
		checkRow(p, line, row)
	}
	return p
}

func checkRow(p *phase, line int, row []string) {
	dates := make(map[int]domain.Date, 4)
	for _, col := range []int{colReportDate, colStartDate, colEndDate, colPeakDate} {
		d, err := domain.ParseDate(domain.DateLayout, row[col])
		if err != nil {
			p.errorf("line %d: column %s: %v", line, csvfile.MergedColumns[col], err)
			return
		}
		dates[col] = d
	}
	report, start, end, peak := dates[colReportDate], dates[colStartDate], dates[colEndDate], dates[colPeakDate]

	if !start.Before(end) {
		p.errorf("line %d: start %s not before end %s", line, start, end)
	}
	if report.Before(start) || report.After(end) {
		p.errorf("line %d: report date %s outside [%s, %s]", line, report, start, end)
	}
	if peak.Before(start) || !peak.Before(end) {
		p.errorf("line %d: peak %s outside [%s, %s)", line, peak, start, end)
	}
	if d, err := strconv.Atoi(row[colDuration]); err != nil || d != domain.Duration(start, end) {
		p.errorf("line %d: duration %q, want %d", line, row[colDuration], domain.Duration(start, end))
	}
	dir := domain.ParseDirection(row[colDirection])
	if code := strconv.Itoa(dir.Code()); code != row[colDirCode] {
		p.errorf("line %d: direction %q encodes as %s, got %s", line, row[colDirection], code, row[colDirCode])
	}
}

func validateRecomputation(merged, expected [][]string) *phase {
	p := &phase{name: "Phase 3: Recomputed rows match"}
	if len(merged) != len(expected) {
		p.errorf("row count: got %d, want %d", len(merged)-1, len(expected)-1)
	}
	for i := 1; i < min(len(merged), len(expected)); i++ {
		if diff := cmp.Diff(expected[i], merged[i]); diff != "" {
			p.errorf("line %d (-want +got):\n%s", i+1, diff)
		}
	}
	return p
}
