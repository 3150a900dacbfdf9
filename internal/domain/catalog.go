package domain

import "slices"

// DayLookup returns the detections acquired on one day, in catalog order.
// Implementations must be safe for concurrent readers.
type DayLookup interface {
	LookupDay(d Date) []Detection
}

// Catalog is an immutable date-indexed MODIS detection catalog. Build it once
// with NewCatalog and share it read-only between resolvers; it has no
// mutating methods, so concurrent lookups need no locking.
type Catalog struct {
	days  map[Date][]Detection
	count int
	first Date
	last  Date
}

// NewCatalog groups detections by acquisition date. The relative order of
// detections within a day is preserved, since cluster location relies on
// spatially adjacent detections being adjacent in the source listing.
func NewCatalog(detections []Detection) *Catalog {
	c := &Catalog{days: make(map[Date][]Detection)}
	for _, det := range detections {
		if det.Date.IsZero() {
			continue
		}
		c.days[det.Date] = append(c.days[det.Date], det)
		c.count++
		if c.first.IsZero() || det.Date.Before(c.first) {
			c.first = det.Date
		}
		if c.last.IsZero() || det.Date.After(c.last) {
			c.last = det.Date
		}
	}
	return c
}

// LookupDay returns the day's detections, or nil if the day has none.
// The returned slice is clipped so appending to it never touches the catalog.
func (c *Catalog) LookupDay(d Date) []Detection {
	return slices.Clip(c.days[d])
}

// Len reports the total number of detections.
func (c *Catalog) Len() int { return c.count }

// Days reports how many distinct days have at least one detection.
func (c *Catalog) Days() int { return len(c.days) }

// Span returns the earliest and latest acquisition dates; both are zero for
// an empty catalog.
func (c *Catalog) Span() (first, last Date) { return c.first, c.last }
