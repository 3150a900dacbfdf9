// Command inspect resolves a single anchor against a MODIS catalog and prints
// the extent walk, per-day footprint sizes, the fire summary, and a fixed
// window of single-day cluster lookups around the anchor date.
//
// Usage:
//
//	go run ./cmd/inspect -catalog data/modis.csv -lat 56.62 -lng -111.28 -date 2016-05-02
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/couchcryptid/fire-extent-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/fire-extent-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	catalogPath := flag.String("catalog", "", "MODIS detection CSV")
	lat := flag.Float64("lat", 0, "anchor latitude")
	lng := flag.Float64("lng", 0, "anchor longitude")
	dateStr := flag.String("date", "", "anchor date (YYYY-MM-DD)")
	window := flag.Int("window", 3, "days either side of the anchor for the fixed window lookup")
	firstRec := flag.Float64("first-rec", domain.ExtentThresholds.FirstRecord, "first record threshold (degrees)")
	adjacentRec := flag.Float64("adjacent-rec", domain.ExtentThresholds.AdjacentRecord, "adjacent record threshold (degrees)")
	asJSON := flag.Bool("json", false, "print the summary as JSON")
	flag.Parse()

	if *catalogPath == "" || *dateStr == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -catalog, -date")
	}
	date, err := domain.ParseDate(domain.DateLayout, *dateStr)
	if err != nil {
		return err
	}
	occ := domain.Occurrence{Lat: *lat, Lng: *lng, ReportDate: date}
	if err := occ.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	catalog, stats, err := csvfile.LoadCatalog(*catalogPath, logger)
	if err != nil {
		return err
	}
	first, last := catalog.Span()
	fmt.Printf("catalog: %d detections (%d skipped), %d days, %s .. %s\n",
		stats.Loaded, stats.Skipped, catalog.Days(), first, last)

	resolver := domain.NewResolver(catalog, domain.Thresholds{FirstRecord: *firstRec, AdjacentRecord: *adjacentRec})
	extent, ok := resolver.Resolve(*lat, *lng, date)
	if !ok {
		fmt.Println("no fire: the anchor has no multi-day cluster")
	} else {
		summary := domain.Summarize(extent)
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return err
			}
		} else {
			printExtent(extent, summary)
		}
	}

	printWindow(resolver.Window(*lat, *lng, date, *window), date, *window)
	return nil
}

func printExtent(extent domain.FireExtent, summary domain.FireSummary) {
	fmt.Printf("\nextent: %s .. %s (%d days)\n", extent.Start, extent.End, domain.Duration(extent.Start, extent.End))
	fmt.Printf("%-12s %8s %10s %s\n", "date", "pixels", "area_km2", "center")
	for _, d := range summary.Daily {
		fmt.Printf("%-12s %8d %10.3f %.4f,%.4f\n",
			d.Date, len(extent.Clusters[d.Date]), d.AreaKm2, d.Center.Lat, d.Center.Lng)
	}
	fmt.Printf("\npeak %s  max %.3f  ave %.3f\n", summary.PeakDate, summary.MaxSize, summary.AveSize)
	fmt.Printf("increase rate %s  decrease rate %s\n", summary.AveIncreaseRate, summary.AveDecreaseRate)
	dir := summary.Direction.String()
	if dir == "" {
		dir = "none"
	}
	fmt.Printf("movement %s (%d)\n", dir, summary.Direction.Code())
}

func printWindow(clusters map[domain.Date][]domain.Detection, date domain.Date, days int) {
	fmt.Printf("\nsingle-day window [%s, %s):\n", date.AddDays(-days), date.AddDays(days))
	for day := date.AddDays(-days); day.Before(date.AddDays(days)); day = day.AddDays(1) {
		cluster := clusters[day]
		if len(cluster) == 0 {
			fmt.Printf("  %s  -\n", day)
			continue
		}
		size := domain.MeasureDay(day, cluster)
		fmt.Printf("  %s  %3d pixels  %8.3f km2\n", day, len(cluster), size.AreaKm2)
	}
}
