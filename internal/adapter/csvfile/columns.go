// Package csvfile reads MODIS hotspot and fire occurrence listings from CSV
// and writes merged fire records back out as CSV.
//
// Columns are located by header name, not position, so archives with extra
// or reordered columns load unchanged.
package csvfile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing required column")

// ReadStats summarizes one pass over a CSV source.
type ReadStats struct {
	Rows    int // data rows seen, header excluded
	Loaded  int
	Skipped int
}

// headerIndex maps normalized header names to column positions.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// lookup returns the position of the first alias present, or -1.
func (h headerIndex) lookup(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i
		}
	}
	return -1
}

func (h headerIndex) require(aliases ...string) (int, error) {
	i := h.lookup(aliases...)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, aliases[0])
	}
	return i, nil
}

// field returns the trimmed value at i, or "" when the row is too short or i < 0.
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseFloat(record []string, i int, name string) (float64, error) {
	v, err := strconv.ParseFloat(field(record, i), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse %s: %q is not a finite number", name, field(record, i))
	}
	return v, nil
}
