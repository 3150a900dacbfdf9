package domain

import (
	"maps"
	"slices"
)

// FireExtent is the resolved active window of one fire. Clusters holds the
// located detections of every walked day from Start through End inclusive;
// size metrics cover [Start, End) and End's cluster only feeds the movement
// direction.
type FireExtent struct {
	Start    Date
	End      Date
	Clusters map[Date][]Detection
}

// Days returns End - Start in days.
func (e FireExtent) Days() int { return e.Start.DaysUntil(e.End) }

// Dates returns the dates that have a cluster, in ascending order.
func (e FireExtent) Dates() []Date {
	return slices.SortedFunc(maps.Keys(e.Clusters), Date.Compare)
}

// Resolver discovers a fire's temporal extent from an approximate ignition
// report by walking a read-only catalog day by day. A Resolver holds no
// mutable state and may be shared between goroutines.
type Resolver struct {
	catalog    DayLookup
	thresholds Thresholds
}

// NewResolver creates a resolver over catalog using th for every day's
// cluster lookup during the walk.
func NewResolver(catalog DayLookup, th Thresholds) *Resolver {
	return &Resolver{catalog: catalog, thresholds: th}
}

// Thresholds returns the walk thresholds.
func (r *Resolver) Thresholds() Thresholds { return r.thresholds }

// Locate returns the anchor's cluster on a single day using th.
func (r *Resolver) Locate(lat, lng float64, date Date, th Thresholds) []Detection {
	return LocateCluster(r.catalog.LookupDay(date), lat, lng, th)
}

// Resolve walks backward from reportDate while each day still yields a
// cluster around the anchor, then forward the same way. Start is the last
// day found going back, End the last day found going forward.
//
// ok is false when reportDate itself has no cluster, or when the walk never
// leaves reportDate (Start == End). Neither is an error; the occurrence just
// has no usable fire signature.
//
// The walk assumes an unbroken run of detected days: one day with no
// cluster (sensor gap, cloud cover) ends the fire on that side.
func (r *Resolver) Resolve(lat, lng float64, reportDate Date) (FireExtent, bool) {
	if len(r.Locate(lat, lng, reportDate, r.thresholds)) == 0 {
		return FireExtent{}, false
	}

	clusters := make(map[Date][]Detection)
	start := r.walk(lat, lng, reportDate, -1, clusters)
	end := r.walk(lat, lng, reportDate, 1, clusters)
	if start == end {
		return FireExtent{}, false
	}
	return FireExtent{Start: start, End: end, Clusters: clusters}, true
}

// walk steps from `from` by step days, recording each day's cluster, and
// returns the last day that had one.
func (r *Resolver) walk(lat, lng float64, from Date, step int, clusters map[Date][]Detection) Date {
	last := from
	for day := from; ; day = day.AddDays(step) {
		cluster := r.Locate(lat, lng, day, r.thresholds)
		if len(cluster) == 0 {
			return last
		}
		clusters[day] = cluster
		last = day
	}
}

// Window looks up the anchor's cluster on each day of [date-days, date+days)
// independently using SingleDayThresholds. Days without a cluster map to nil.
func (r *Resolver) Window(lat, lng float64, date Date, days int) map[Date][]Detection {
	out := make(map[Date][]Detection, 2*days)
	end := date.AddDays(days)
	for day := date.AddDays(-days); day.Before(end); day = day.AddDays(1) {
		out[day] = r.Locate(lat, lng, day, SingleDayThresholds)
	}
	return out
}
