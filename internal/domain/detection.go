package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidOccurrence marks an occurrence that cannot be resolved at all.
var ErrInvalidOccurrence = errors.New("invalid occurrence")

// LatLng is a WGS-84 latitude/longitude pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Detection is one MODIS active-fire hotspot. Scan and Track are the
// along-scan and along-track pixel sizes in km; Scan is the footprint width
// (projected onto latitude), Track its height (projected onto longitude).
type Detection struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Scan  float64 `json:"scan"`
	Track float64 `json:"track"`
	Date  Date    `json:"acq_date"`

	// Catalog attributes carried through but never used by the core.
	Brightness float64 `json:"brightness,omitempty"`
	AcqTime    int     `json:"acq_time,omitempty"` // HHMM, e.g. 1805
	Confidence int     `json:"confidence,omitempty"`
	FRP        float64 `json:"frp,omitempty"` // fire radiative power, MW
	Daytime    bool    `json:"daytime,omitempty"`
}

// Field is an opaque named value passed from an occurrence to its output row.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Occurrence is a reported ignition: an approximate location and the date
// it was reported. Fields are passthrough columns (weather indices) the core
// never inspects.
type Occurrence struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	ReportDate Date    `json:"report_date"`
	Fields     []Field `json:"fields,omitempty"`
	Line       int     `json:"-"` // source line, for logging
}

// Validate checks the anchor is a real coordinate with a report date.
func (o Occurrence) Validate() error {
	switch {
	case !(o.Lat >= -90 && o.Lat <= 90):
		return fmt.Errorf("%w: latitude %g out of range", ErrInvalidOccurrence, o.Lat)
	case !(o.Lng >= -180 && o.Lng <= 180):
		return fmt.Errorf("%w: longitude %g out of range", ErrInvalidOccurrence, o.Lng)
	case o.ReportDate.IsZero():
		return fmt.Errorf("%w: missing report date", ErrInvalidOccurrence)
	}
	return nil
}
