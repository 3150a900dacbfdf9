package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
)

// MergedColumns is the fixed column prefix of a merged output row.
var MergedColumns = []string{
	"lat", "lng", "reportDate", "startDate", "endDate", "peakDate", "duration",
	"maxSize", "aveSize", "increaseSpreadRate", "decreaseSpreadRate",
	"movementDirection", "movementDirectionNum",
}

// Writer writes merged fire records as CSV. It implements pipeline.BatchLoader.
type Writer struct {
	mu          sync.Mutex
	w           *csv.Writer
	closer      io.Closer
	passthrough []string
	written     int
}

// CreateWriter creates (or truncates) path, making parent directories as needed.
func CreateWriter(path string, passthrough []string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w, err := NewWriter(f, passthrough)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter writes the header to out immediately. passthrough names the
// occurrence columns appended after MergedColumns.
func NewWriter(out io.Writer, passthrough []string) (*Writer, error) {
	w := &Writer{w: csv.NewWriter(out), passthrough: passthrough}
	header := make([]string, 0, len(MergedColumns)+len(passthrough))
	header = append(header, MergedColumns...)
	header = append(header, passthrough...)
	if err := w.w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// LoadBatch appends records in order and flushes them.
func (w *Writer) LoadBatch(_ context.Context, records []domain.FireRecord) error {
	if len(records) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range records {
		if err := w.w.Write(w.row(&records[i])); err != nil {
			return fmt.Errorf("write record %s: %w", records[i].ID, err)
		}
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	w.written += len(records)
	return nil
}

func (w *Writer) row(rec *domain.FireRecord) []string {
	row := make([]string, 0, len(MergedColumns)+len(w.passthrough))
	row = append(row,
		formatFloat(rec.Lat),
		formatFloat(rec.Lng),
		rec.ReportDate.String(),
		rec.StartDate.String(),
		rec.EndDate.String(),
		rec.PeakDate.String(),
		strconv.Itoa(rec.Duration),
		formatFloat(rec.MaxSize),
		formatFloat(rec.AveSize),
		rec.AveIncreaseRate.String(),
		rec.AveDecreaseRate.String(),
		rec.Direction.String(),
		strconv.Itoa(rec.DirectionCode),
	)
	for _, name := range w.passthrough {
		row = append(row, fieldValue(rec.Fields, name))
	}
	return row
}

func fieldValue(fields []domain.Field, name string) string {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Written reports how many records have been written.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Close flushes buffered output and closes the file if CreateWriter opened it.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.w.Flush()
	err := w.w.Error()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
