// Package mockdata generates deterministic synthetic MODIS detections and
// fire occurrence listings for tests and fixtures.
package mockdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
)

// pixelSpacing separates consecutive detections of one day's cluster, in
// degrees (about 1.1 km), so 1 km footprints sit side by side.
const pixelSpacing = 0.01

// reportOffsetDeg is how far an occurrence's reported location sits from the
// true ignition point.
const reportOffsetDeg = 0.02

// Fire describes one synthetic fire.
type Fire struct {
	Name  string
	Lat   float64
	Lng   float64
	Start domain.Date
	// Pixels is the number of detections on each day from Start.
	Pixels []int
	// Drift is the daily shift of the cluster origin, in degrees.
	Drift domain.LatLng
	// ReportDay is the day index (from Start) the fire is reported on.
	ReportDay int
}

// ReportDate is the date the fire's occurrence is reported.
func (f Fire) ReportDate() domain.Date { return f.Start.AddDays(f.ReportDay) }

// End is the last day with detections.
func (f Fire) End() domain.Date { return f.Start.AddDays(len(f.Pixels) - 1) }

// Dataset is a generated catalog listing and occurrence listing.
type Dataset struct {
	Detections  []domain.Detection
	Occurrences []domain.Occurrence
}

// DefaultFires returns three fires in northern Alberta during May 2016 with
// non-overlapping date ranges. The last one burns for a single day only and
// resolves to no fire.
func DefaultFires() []Fire {
	return []Fire{
		{
			Name:      "horse-river",
			Lat:       56.60,
			Lng:       -111.30,
			Start:     domain.NewDate(2016, time.May, 1),
			Pixels:    []int{2, 4, 6, 3, 2},
			Drift:     domain.LatLng{Lat: 0.05, Lng: 0.05},
			ReportDay: 1,
		},
		{
			Name:      "chip-lake",
			Lat:       53.65,
			Lng:       -115.40,
			Start:     domain.NewDate(2016, time.May, 8),
			Pixels:    []int{3, 5, 5, 8, 4, 2},
			Drift:     domain.LatLng{Lat: -0.03, Lng: -0.04},
			ReportDay: 2,
		},
		{
			Name:      "flash",
			Lat:       55.10,
			Lng:       -118.80,
			Start:     domain.NewDate(2016, time.May, 16),
			Pixels:    []int{3},
			ReportDay: 0,
		},
	}
}

// Stray is an occurrence with no detections anywhere near it.
var Stray = domain.Occurrence{Lat: 49.50, Lng: -123.00, ReportDate: domain.NewDate(2016, time.May, 3)}

// Generate lays out the fires' detections day-major in date order and builds
// one occurrence per fire, followed by strays.
func Generate(fires []Fire, strays ...domain.Occurrence) Dataset {
	var ds Dataset
	byDate := make(map[domain.Date][]domain.Detection)
	var dates []domain.Date
	for _, f := range fires {
		for day, n := range f.Pixels {
			date := f.Start.AddDays(day)
			if _, seen := byDate[date]; !seen {
				dates = append(dates, date)
			}
			byDate[date] = append(byDate[date], f.detections(day, n)...)
		}
		ds.Occurrences = append(ds.Occurrences, domain.Occurrence{
			Lat:        round4(f.Lat + reportOffsetDeg),
			Lng:        round4(f.Lng + reportOffsetDeg),
			ReportDate: f.ReportDate(),
			Fields:     weather(len(ds.Occurrences)),
		})
	}
	sortDates(dates)
	for _, d := range dates {
		ds.Detections = append(ds.Detections, byDate[d]...)
	}
	for _, s := range strays {
		s.Fields = weather(len(ds.Occurrences))
		ds.Occurrences = append(ds.Occurrences, s)
	}
	return ds
}

func (f Fire) detections(day, n int) []domain.Detection {
	date := f.Start.AddDays(day)
	originLat := f.Lat + f.Drift.Lat*float64(day)
	originLng := f.Lng + f.Drift.Lng*float64(day)
	out := make([]domain.Detection, n)
	for k := range n {
		out[k] = domain.Detection{
			Lat:        round4(originLat + pixelSpacing*float64(k)),
			Lng:        round4(originLng + pixelSpacing*float64(k)),
			Scan:       1.0 + 0.1*float64(k%3),
			Track:      1.0,
			Date:       date,
			Brightness: 310 + float64(k*4),
			AcqTime:    [2]int{1805, 930}[day%2],
			Confidence: 60 + (k*7)%40,
			FRP:        12.5 + float64(k)*3,
			Daytime:    day%2 == 0,
		}
	}
	return out
}

func weather(i int) []domain.Field {
	f := float64(i)
	return []domain.Field{
		{Name: "temp", Value: formatFloat(22.5 + f)},
		{Name: "rh", Value: strconv.Itoa(18 + i*3)},
		{Name: "ws", Value: formatFloat(15 + f*2)},
		{Name: "ffmc", Value: formatFloat(91.2 - f)},
		{Name: "fwi", Value: formatFloat(28 + f*1.5)},
	}
}

func sortDates(dates []domain.Date) {
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j].Before(dates[j-1]); j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
}

func round4(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// ModisHeader is the FIRMS archive header written by WriteModisCSV.
var ModisHeader = []string{
	"latitude", "longitude", "brightness", "scan", "track", "acq_date", "acq_time",
	"satellite", "instrument", "confidence", "version", "bright_t31", "frp", "daynight",
}

// WriteModisCSV writes detections in FIRMS archive layout.
func WriteModisCSV(w io.Writer, detections []domain.Detection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ModisHeader); err != nil {
		return fmt.Errorf("write modis header: %w", err)
	}
	for _, d := range detections {
		satellite, dn := "Aqua", "N"
		if d.Daytime {
			satellite, dn = "Terra", "D"
		}
		row := []string{
			formatFloat(d.Lat), formatFloat(d.Lng), formatFloat(d.Brightness),
			formatFloat(d.Scan), formatFloat(d.Track), d.Date.String(),
			fmt.Sprintf("%04d", d.AcqTime), satellite, "MODIS",
			strconv.Itoa(d.Confidence), "6.03", "290.0", formatFloat(d.FRP), dn,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write modis row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOccurrenceCSV writes occurrences with dates in layout, plus every
// passthrough field named on the first occurrence.
func WriteOccurrenceCSV(w io.Writer, occurrences []domain.Occurrence, layout string) error {
	cw := csv.NewWriter(w)
	header := []string{"fire_number", "date", "latitude", "longitude"}
	var extra []string
	if len(occurrences) > 0 {
		for _, f := range occurrences[0].Fields {
			extra = append(extra, f.Name)
		}
	}
	if err := cw.Write(append(header, extra...)); err != nil {
		return fmt.Errorf("write occurrence header: %w", err)
	}
	for i, o := range occurrences {
		row := []string{
			fmt.Sprintf("F%03d", i+1),
			o.ReportDate.Time().Format(layout),
			formatFloat(o.Lat),
			formatFloat(o.Lng),
		}
		for _, name := range extra {
			row = append(row, fieldValue(o.Fields, name))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write occurrence row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func fieldValue(fields []domain.Field, name string) string {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}
