package domain

import "math"

// Thresholds bound the degree distances used to carve one fire out of a
// day's detection listing.
type Thresholds struct {
	// FirstRecord is the max |Δlat| and |Δlng| between the anchor and the
	// seed detection.
	FirstRecord float64
	// AdjacentRecord is the max |Δlat| and |Δlng| between two consecutive
	// detections of the same cluster.
	AdjacentRecord float64
}

var (
	// SingleDayThresholds suit a direct lookup of one day around a report.
	SingleDayThresholds = Thresholds{FirstRecord: 1.1, AdjacentRecord: 0.2}

	// ExtentThresholds are looser, for the multi-day walk where a fire's
	// footprint drifts away from the reported point.
	ExtentThresholds = Thresholds{FirstRecord: 2, AdjacentRecord: 1.5}
)

// LocateCluster extracts the contiguous run of detections belonging to the
// fire nearest the anchor. It relies on the catalog listing spatially
// adjacent detections next to each other and never re-sorts.
//
// The seed is the first detection within FirstRecord of the anchor. The run
// starts one record before the seed (when the seed is not the first record)
// and grows forward while consecutive records stay within AdjacentRecord on
// both axes. A run shorter than two records, or a day with no seed, yields
// nil.
func LocateCluster(detections []Detection, lat, lng float64, th Thresholds) []Detection {
	n := len(detections)
	if n < 2 {
		return nil
	}

	nearAnchor := func(d Detection) bool {
		return math.Abs(d.Lat-lat) <= th.FirstRecord && math.Abs(d.Lng-lng) <= th.FirstRecord
	}

	seed := 0
	for seed < n-1 && !nearAnchor(detections[seed]) {
		seed++
	}
	if !nearAnchor(detections[seed]) {
		return nil
	}

	start := seed
	if seed > 0 {
		start = seed - 1
	}
	end := seed
	for end+1 < n && adjacent(detections[end], detections[end+1], th.AdjacentRecord) {
		end++
	}
	if start == end {
		return nil
	}
	return detections[start : end+1 : end+1]
}

func adjacent(a, b Detection, limit float64) bool {
	return math.Abs(a.Lat-b.Lat) <= limit && math.Abs(a.Lng-b.Lng) <= limit
}
