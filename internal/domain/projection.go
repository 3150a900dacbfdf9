package domain

import "math"

// EarthRadiusKm is the mean Earth radius used by the local projection.
const EarthRadiusKm = 6371.0

// kmPerDegree is the arc length of one degree on a great circle.
const kmPerDegree = 2 * math.Pi * EarthRadiusKm / 360

// Projector maps latitude/longitude onto a flat kilometre plane anchored at
// an origin. Both axes use the same great-circle scale, with no cos(lat)
// correction for longitude. It is only meaningful over regional extents
// (tens to low hundreds of km), which is the scale of a single fire's daily
// footprint; do not use it for anything continental.
type Projector struct {
	OriginLat float64
	OriginLng float64
}

// X converts a latitude to km from the origin latitude.
func (p Projector) X(lat float64) float64 {
	return (lat - p.OriginLat) * kmPerDegree
}

// Y converts a longitude to km from the origin longitude.
func (p Projector) Y(lng float64) float64 {
	return (lng - p.OriginLng) * kmPerDegree
}
