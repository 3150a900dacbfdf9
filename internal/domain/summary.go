package domain

import (
	"encoding/json"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// MissingDaySize stands in for the size of a day inside [Start, End) that has
// no measured cluster. It is averaged and compared like a real size.
const MissingDaySize = -1.0

// DailySize is one day's measured footprint. Center is the midpoint of the
// cluster's bounding box, not an area-weighted centroid.
type DailySize struct {
	Date      Date    `json:"date"`
	AreaKm2   float64 `json:"area_km2"`
	Center    LatLng  `json:"center"`
	HasCenter bool    `json:"-"`
}

// Rate is a relative day-over-day change. Defined is false when it could not
// be computed (a zero-size previous day, or no day pairs at all).
type Rate struct {
	Value   float64
	Defined bool
}

// String renders the rate for tabular output; undefined renders as NaN.
func (r Rate) String() string {
	if !r.Defined {
		return "NaN"
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON encodes an undefined rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate{}
		return nil
	}
	if err := json.Unmarshal(data, &r.Value); err != nil {
		return err
	}
	r.Defined = true
	return nil
}

// Direction is the compass quadrant a fire's center drifted toward.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionNW
	DirectionNE
	DirectionSW
	DirectionSE
)

func (d Direction) String() string {
	switch d {
	case DirectionNW:
		return "NW"
	case DirectionNE:
		return "NE"
	case DirectionSW:
		return "SW"
	case DirectionSE:
		return "SE"
	default:
		return ""
	}
}

// Code is the numeric encoding used in output tables: NW=0, NE=1, SW=2, and 3
// for SE as well as for no movement.
func (d Direction) Code() int {
	switch d {
	case DirectionNW:
		return 0
	case DirectionNE:
		return 1
	case DirectionSW:
		return 2
	default:
		return 3
	}
}

// ParseDirection is the inverse of String; unknown values map to DirectionNone.
func ParseDirection(s string) Direction {
	switch s {
	case "NW":
		return DirectionNW
	case "NE":
		return DirectionNE
	case "SW":
		return DirectionSW
	case "SE":
		return DirectionSE
	default:
		return DirectionNone
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDirection(s)
	return nil
}

// MovementDirection classifies the drift from one center to another. Ties on
// latitude count as north; ties on longitude count as west only when heading
// north.
func MovementDirection(from, to LatLng) Direction {
	dLat := to.Lat - from.Lat
	dLng := to.Lng - from.Lng
	switch {
	case dLat == 0 && dLng == 0:
		return DirectionNone
	case dLat >= 0 && dLng <= 0:
		return DirectionNW
	case dLat >= 0:
		return DirectionNE
	case dLng <= 0:
		return DirectionSW
	default:
		return DirectionSE
	}
}

// FireSummary holds the metrics derived from a fire's daily sizes.
type FireSummary struct {
	PeakDate        Date        `json:"peak_date"`
	MaxSize         float64     `json:"max_size"`
	AveSize         float64     `json:"ave_size"`
	AveIncreaseRate Rate        `json:"ave_increase_rate"`
	AveDecreaseRate Rate        `json:"ave_decrease_rate"`
	Direction       Direction   `json:"movement_direction"`
	Daily           []DailySize `json:"daily,omitempty"`
}

// Summarize measures every clustered day of the extent on its own coverage
// grid and derives the fire's metrics.
func Summarize(extent FireExtent) FireSummary {
	sizes := make(map[Date]DailySize, len(extent.Clusters))
	daily := make([]DailySize, 0, len(extent.Clusters))
	for _, day := range extent.Dates() {
		cluster := extent.Clusters[day]
		if len(cluster) == 0 {
			continue
		}
		size := MeasureDay(day, cluster)
		sizes[day] = size
		daily = append(daily, size)
	}
	summary := CalculateSummary(extent.Start, extent.End, sizes)
	summary.Daily = daily
	return summary
}

// CalculateSummary derives peak, average and rate metrics over [start, end)
// from per-day sizes. Days in range without an entry count as MissingDaySize.
// The movement direction compares the centers of start and end; it is
// DirectionNone if either is unknown.
func CalculateSummary(start, end Date, sizes map[Date]DailySize) FireSummary {
	series := sizeSeries(start, end, sizes)

	var s FireSummary
	if len(series) == 0 {
		s.PeakDate = start
		s.MaxSize = MissingDaySize
		s.AveSize = MissingDaySize
	} else {
		peak := floats.MaxIdx(series)
		s.PeakDate = start.AddDays(peak)
		s.MaxSize = series[peak]
		s.AveSize = floats.Sum(series) / float64(len(series))
	}
	s.AveIncreaseRate = averageRate(start, s.PeakDate, sizes)
	s.AveDecreaseRate = averageRate(s.PeakDate, end, sizes)

	from, okFrom := sizes[start]
	to, okTo := sizes[end]
	if okFrom && okTo && from.HasCenter && to.HasCenter {
		s.Direction = MovementDirection(from.Center, to.Center)
	}
	return s
}

// sizeSeries lists the size of every day in [start, end), substituting
// MissingDaySize for days without a measurement.
func sizeSeries(start, end Date, sizes map[Date]DailySize) []float64 {
	var series []float64
	for day := start; day.Before(end); day = day.AddDays(1) {
		series = append(series, sizeOn(day, sizes))
	}
	return series
}

func sizeOn(day Date, sizes map[Date]DailySize) float64 {
	if s, ok := sizes[day]; ok {
		return s.AreaKm2
	}
	return MissingDaySize
}

// CalcRate is the relative change from size1 to size2. It is undefined when
// size1 is zero.
func CalcRate(size1, size2 float64) Rate {
	if size1 == 0 {
		return Rate{}
	}
	return Rate{Value: (size2 - size1) / size1, Defined: true}
}

// averageRate is the mean CalcRate over consecutive day pairs lying wholly
// inside [start, end). Any undefined pair, or no pairs, makes the average
// undefined.
func averageRate(start, end Date, sizes map[Date]DailySize) Rate {
	var rates []float64
	last := end.AddDays(-1)
	for day := start; day.Before(last); day = day.AddDays(1) {
		r := CalcRate(sizeOn(day, sizes), sizeOn(day.AddDays(1), sizes))
		if !r.Defined {
			return Rate{}
		}
		rates = append(rates, r.Value)
	}
	if len(rates) == 0 {
		return Rate{}
	}
	return Rate{Value: floats.Sum(rates) / float64(len(rates)), Defined: true}
}
