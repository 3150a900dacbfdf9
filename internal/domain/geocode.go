package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding names the place where a fire started by reverse
// geocoding its start-day center. If geocoder is nil the record is returned
// untouched; on failure GeoSource is set to "failed" and the record is still
// usable.
func EnrichWithGeocoding(ctx context.Context, rec FireRecord, geocoder Geocoder, logger *slog.Logger) FireRecord {
	if geocoder == nil {
		return rec
	}

	center := rec.StartCenter
	if center.Lat == 0 && center.Lng == 0 {
		center = LatLng{Lat: rec.Lat, Lng: rec.Lng}
	}

	result, err := geocoder.ReverseGeocode(ctx, center.Lat, center.Lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"record_id", rec.ID,
			"lat", center.Lat,
			"lng", center.Lng,
			"error", err,
		)
		rec.GeoSource = "failed"
		return rec
	}
	if result.FormattedAddress == "" {
		rec.GeoSource = "original"
		return rec
	}

	rec.FormattedAddress = result.FormattedAddress
	rec.PlaceName = result.PlaceName
	rec.GeoConfidence = result.Confidence
	rec.GeoSource = "reverse"
	return rec
}
