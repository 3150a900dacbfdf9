package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
)

type modisColumns struct {
	lat, lng, scan, track, date int
	brightness, acqTime, conf   int
	frp, dayNight               int
}

func resolveModisColumns(h headerIndex) (modisColumns, error) {
	var c modisColumns
	var err error
	if c.lat, err = h.require("latitude", "lat"); err != nil {
		return c, err
	}
	if c.lng, err = h.require("longitude", "lng", "lon"); err != nil {
		return c, err
	}
	if c.scan, err = h.require("scan"); err != nil {
		return c, err
	}
	if c.track, err = h.require("track"); err != nil {
		return c, err
	}
	if c.date, err = h.require("acq_date"); err != nil {
		return c, err
	}
	c.brightness = h.lookup("brightness", "bright_ti4")
	c.acqTime = h.lookup("acq_time")
	c.conf = h.lookup("confidence")
	c.frp = h.lookup("frp")
	c.dayNight = h.lookup("daynight")
	return c, nil
}

// LoadCatalog opens path and reads it with ReadCatalog.
func LoadCatalog(path string, logger *slog.Logger) (*domain.Catalog, ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f, logger)
}

// ReadCatalog loads a FIRMS MODIS archive listing into a date-indexed catalog.
// Rows that fail to parse are logged, counted as skipped and left out; the
// row order of the file is preserved within each day.
func ReadCatalog(r io.Reader, logger *slog.Logger) (*domain.Catalog, ReadStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ReadStats{}, errors.New("read catalog header: empty input")
		}
		return nil, ReadStats{}, fmt.Errorf("read catalog header: %w", err)
	}
	cols, err := resolveModisColumns(newHeaderIndex(header))
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("catalog header: %w", err)
	}

	var stats ReadStats
	var detections []domain.Detection
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, stats, fmt.Errorf("read catalog: %w", err)
			}
			logger.Warn("skipping malformed catalog row", "line", parseErr.Line, "error", err)
			stats.Skipped++
			continue
		}

		det, err := parseDetection(record, cols)
		if err != nil {
			line, _ := cr.FieldPos(0)
			logger.Warn("skipping catalog row", "line", line, "error", err)
			stats.Skipped++
			continue
		}
		detections = append(detections, det)
		stats.Loaded++
	}

	catalog := domain.NewCatalog(detections)
	first, last := catalog.Span()
	logger.Info("catalog loaded",
		"detections", catalog.Len(),
		"days", catalog.Days(),
		"first", first.String(),
		"last", last.String(),
		"skipped", stats.Skipped,
	)
	return catalog, stats, nil
}

func parseDetection(record []string, c modisColumns) (domain.Detection, error) {
	var d domain.Detection
	var err error
	if d.Lat, err = parseFloat(record, c.lat, "latitude"); err != nil {
		return d, err
	}
	if d.Lng, err = parseFloat(record, c.lng, "longitude"); err != nil {
		return d, err
	}
	if !(d.Lat >= -90 && d.Lat <= 90) || !(d.Lng >= -180 && d.Lng <= 180) {
		return d, fmt.Errorf("coordinate %g,%g out of range", d.Lat, d.Lng)
	}
	if d.Scan, err = parseFloat(record, c.scan, "scan"); err != nil {
		return d, err
	}
	if d.Track, err = parseFloat(record, c.track, "track"); err != nil {
		return d, err
	}
	if d.Scan <= 0 || d.Track <= 0 {
		return d, fmt.Errorf("non-positive footprint %gx%g", d.Scan, d.Track)
	}
	if d.Date, err = domain.ParseDate(domain.DateLayout, field(record, c.date)); err != nil {
		return d, err
	}

	// Catalog attributes are informational; unparseable values stay zero.
	d.Brightness, _ = strconv.ParseFloat(field(record, c.brightness), 64)
	d.AcqTime, _ = strconv.Atoi(field(record, c.acqTime))
	d.Confidence, _ = strconv.Atoi(field(record, c.conf))
	d.FRP, _ = strconv.ParseFloat(field(record, c.frp), 64)
	d.Daytime = field(record, c.dayNight) == "D"
	return d, nil
}
