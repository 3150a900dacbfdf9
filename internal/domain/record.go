package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// durationWrapDays is the modulus applied to a fire's duration in output rows.
const durationWrapDays = 365

// FireRecord is the merged output row for one resolved occurrence.
type FireRecord struct {
	ID string `json:"id"`

	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	ReportDate Date    `json:"report_date"`
	StartDate  Date    `json:"start_date"`
	EndDate    Date    `json:"end_date"`
	PeakDate   Date    `json:"peak_date"`
	Duration   int     `json:"duration"`

	MaxSize         float64   `json:"max_size"`
	AveSize         float64   `json:"ave_size"`
	AveIncreaseRate Rate      `json:"increase_spread_rate"`
	AveDecreaseRate Rate      `json:"decrease_spread_rate"`
	Direction       Direction `json:"movement_direction"`
	DirectionCode   int       `json:"movement_direction_num"`

	Fields []Field `json:"fields,omitempty"`

	// Reverse geocoding enrichment of the start-day center.
	StartCenter      LatLng  `json:"start_center"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "failed"

	ProcessedAt time.Time `json:"processed_at"`
}

// NewFireRecord merges an occurrence with its resolved extent and summary.
func NewFireRecord(occ Occurrence, extent FireExtent, summary FireSummary) FireRecord {
	rec := FireRecord{
		ID:              generateID(occ.Lat, occ.Lng, occ.ReportDate),
		Lat:             occ.Lat,
		Lng:             occ.Lng,
		ReportDate:      occ.ReportDate,
		StartDate:       extent.Start,
		EndDate:         extent.End,
		PeakDate:        summary.PeakDate,
		Duration:        Duration(extent.Start, extent.End),
		MaxSize:         summary.MaxSize,
		AveSize:         summary.AveSize,
		AveIncreaseRate: summary.AveIncreaseRate,
		AveDecreaseRate: summary.AveDecreaseRate,
		Direction:       summary.Direction,
		DirectionCode:   summary.Direction.Code(),
		Fields:          occ.Fields,
		ProcessedAt:     clock.Now(),
	}
	for _, d := range summary.Daily {
		if d.Date == extent.Start && d.HasCenter {
			rec.StartCenter = d.Center
		}
	}
	return rec
}

// Duration is ceil(end - start) in days, wrapped modulo 365.
func Duration(start, end Date) int {
	days := end.Time().Sub(start.Time()).Hours() / 24
	return int(math.Ceil(days)) % durationWrapDays
}

// generateID produces a deterministic ID from the occurrence's anchor so that
// reprocessing the same occurrence yields the same record ID downstream.
func generateID(lat, lng float64, reportDate Date) string {
	input := fmt.Sprintf("%.4f|%.4f|%s", lat, lng, reportDate)
	hash := sha256.Sum256([]byte(input))
	return "fire-" + hex.EncodeToString(hash[:8])
}
