// Package domain estimates the burned area and temporal extent of wildfires
// from MODIS active-fire detections.
//
// # Data Source
//
// Detections come from the NASA FIRMS MODIS archive CSV
// (https://firms.modaps.eosdis.nasa.gov/download/). Each row is one hotspot:
// a 1 km nominal pixel center with the real along-scan and along-track pixel
// sizes, which grow toward the swath edge (up to roughly 4.8 x 2.0 km).
// Occurrences are fire reports from an agency listing: a location that may
// be several kilometres off, a report date that may be days after ignition,
// and passthrough weather columns (FWI system indices) the core never reads.
//
// # MODIS Conventions
//
//	acq_date   yyyy-MM-dd, UTC
//	acq_time   HHMM, UTC; three-digit values are zero-padded ("930" → 09:30)
//	scan       footprint width in km, projected onto latitude
//	track      footprint height in km, projected onto longitude
//	daynight   "D" or "N"
//
// The archive lists detections in swath order, so spatially adjacent pixels
// are usually adjacent rows. Cluster location relies on that ordering and
// never re-sorts a day's detections. See [LocateCluster].
//
// # Extent Resolution
//
// A fire's extent is found by walking day by day away from the report date
// in both directions while each day still yields a cluster around the
// report's coordinates. The walk is greedy: one day with no cluster (cloud
// cover, a missed overpass) ends the fire on that side, and a neighbouring
// fire listed next to the seed can be absorbed into the cluster.
//
// Thresholds are in degrees. [SingleDayThresholds] (1.1, 0.2) suit a one-day
// lookup; [ExtentThresholds] (2, 1.5) are looser because the footprint
// drifts away from the reported point over the fire's life.
//
// # Area Estimation
//
// Each day's cluster is rasterized onto a 1 km grid spanning its bounding
// box using a flat projection with a single great-circle scale on both axes
// (no cos(lat) correction). This is only acceptable at the scale of one
// fire. Partial cells combine their horizontal and vertical coverage
// multiplicatively; see [Cell].
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of lat|lng|report date, so
// reprocessing the same occurrence listing produces the same IDs. See
// [generateID].
package domain
