package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
)

// WeatherColumns are the occurrence columns carried through to merged output
// untouched, in output order. Columns absent from a listing are omitted.
var WeatherColumns = []string{
	"temp", "td", "rh", "ws", "wg", "wdir", "pres", "vis", "precip",
	"rndays", "ffmc", "dmc", "dc", "bui", "isi", "fwi", "dsr",
}

type passthroughColumn struct {
	name  string
	index int
}

// OccurrenceReader streams fire occurrence rows in batches.
// It implements pipeline.BatchExtractor and is not safe for concurrent use.
type OccurrenceReader struct {
	r      *csv.Reader
	closer io.Closer
	layout string
	logger *slog.Logger

	lat, lng, date int
	passthrough    []passthroughColumn

	stats ReadStats
	done  bool
}

// OpenOccurrences opens path for streaming. Close releases the file.
func OpenOccurrences(path, dateLayout string, logger *slog.Logger) (*OccurrenceReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open occurrences: %w", err)
	}
	o, err := NewOccurrenceReader(f, dateLayout, logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	o.closer = f
	return o, nil
}

// NewOccurrenceReader reads the header from r and prepares to stream rows.
// Report dates are parsed with dateLayout, a Go time layout.
func NewOccurrenceReader(r io.Reader, dateLayout string, logger *slog.Logger) (*OccurrenceReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read occurrence header: empty input")
		}
		return nil, fmt.Errorf("read occurrence header: %w", err)
	}
	h := newHeaderIndex(header)

	o := &OccurrenceReader{r: cr, layout: dateLayout, logger: logger}
	if o.lat, err = h.require("latitude", "lat"); err != nil {
		return nil, fmt.Errorf("occurrence header: %w", err)
	}
	if o.lng, err = h.require("longitude", "lng", "lon"); err != nil {
		return nil, fmt.Errorf("occurrence header: %w", err)
	}
	if o.date, err = h.require("date", "rep_date", "report_date"); err != nil {
		return nil, fmt.Errorf("occurrence header: %w", err)
	}
	for _, name := range WeatherColumns {
		if i := h.lookup(name); i >= 0 {
			o.passthrough = append(o.passthrough, passthroughColumn{name: name, index: i})
		}
	}
	return o, nil
}

// PassthroughColumns names the weather columns found in the header, in the
// order they appear on every Occurrence's Fields.
func (o *OccurrenceReader) PassthroughColumns() []string {
	names := make([]string, len(o.passthrough))
	for i, c := range o.passthrough {
		names[i] = c.name
	}
	return names
}

// ExtractBatch returns up to batchSize parsed occurrences. Unparseable rows
// are logged and skipped. Once the input is exhausted it returns io.EOF with
// an empty batch.
func (o *OccurrenceReader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.Occurrence, error) {
	if o.done {
		return nil, io.EOF
	}
	batch := make([]domain.Occurrence, 0, batchSize)
	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		record, err := o.r.Read()
		if errors.Is(err, io.EOF) {
			o.done = true
			break
		}
		o.stats.Rows++
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return batch, fmt.Errorf("read occurrences: %w", err)
			}
			o.logger.Warn("skipping malformed occurrence row", "line", parseErr.Line, "error", err)
			o.stats.Skipped++
			continue
		}
		line, _ := o.r.FieldPos(0)
		occ, err := o.parse(record, line)
		if err != nil {
			o.logger.Warn("skipping occurrence row", "line", line, "error", err)
			o.stats.Skipped++
			continue
		}
		batch = append(batch, occ)
		o.stats.Loaded++
	}
	if len(batch) == 0 && o.done {
		return nil, io.EOF
	}
	return batch, nil
}

func (o *OccurrenceReader) parse(record []string, line int) (domain.Occurrence, error) {
	occ := domain.Occurrence{Line: line}
	var err error
	if occ.Lat, err = parseFloat(record, o.lat, "latitude"); err != nil {
		return occ, err
	}
	if occ.Lng, err = parseFloat(record, o.lng, "longitude"); err != nil {
		return occ, err
	}
	if occ.ReportDate, err = domain.ParseDate(o.layout, field(record, o.date)); err != nil {
		return occ, err
	}
	if len(o.passthrough) > 0 {
		occ.Fields = make([]domain.Field, len(o.passthrough))
		for i, c := range o.passthrough {
			occ.Fields[i] = domain.Field{Name: c.name, Value: field(record, c.index)}
		}
	}
	return occ, nil
}

// Stats reports rows seen so far.
func (o *OccurrenceReader) Stats() ReadStats { return o.stats }

// Close releases the underlying file when opened with OpenOccurrences.
func (o *OccurrenceReader) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}
