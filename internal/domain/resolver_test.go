package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pair returns two adjacent detections near lat/lng on d.
func pair(lat, lng float64, d Date) []Detection {
	return []Detection{det(lat, lng, d), det(lat+0.01, lng+0.01, d)}
}

func catalogWithDays(lat, lng float64, offsets ...int) *Catalog {
	var dets []Detection
	for _, off := range offsets {
		dets = append(dets, pair(lat, lng, day0.AddDays(off))...)
	}
	return NewCatalog(dets)
}

func TestResolve_WalksBothDirections(t *testing.T) {
	r := NewResolver(catalogWithDays(50, -110, -2, -1, 0, 1, 2, 3), ExtentThresholds)

	extent, ok := r.Resolve(50, -110, day0)

	require.True(t, ok)
	assert.Equal(t, day0.AddDays(-2), extent.Start)
	assert.Equal(t, day0.AddDays(3), extent.End)
	assert.Equal(t, 5, extent.Days())
	assert.Len(t, extent.Clusters, 6)

	dates := extent.Dates()
	assert.Equal(t, extent.Start, dates[0])
	assert.Equal(t, extent.End, dates[len(dates)-1])
}

func TestResolve_NoClusterOnReportDate(t *testing.T) {
	r := NewResolver(catalogWithDays(50, -110, -2, -1, 1, 2), ExtentThresholds)

	_, ok := r.Resolve(50, -110, day0)

	assert.False(t, ok)
}

func TestResolve_SingleDayIsNotAFire(t *testing.T) {
	r := NewResolver(catalogWithDays(50, -110, 0), ExtentThresholds)

	_, ok := r.Resolve(50, -110, day0)

	assert.False(t, ok)
}

func TestResolve_GapEndsTheWalk(t *testing.T) {
	r := NewResolver(catalogWithDays(50, -110, -3, -2, 0, 1), ExtentThresholds)

	extent, ok := r.Resolve(50, -110, day0)

	require.True(t, ok)
	assert.Equal(t, day0, extent.Start)
	assert.Equal(t, day0.AddDays(1), extent.End)
	assert.NotContains(t, extent.Clusters, day0.AddDays(-2))
}

func TestResolve_FarAnchorFindsNothing(t *testing.T) {
	r := NewResolver(catalogWithDays(50, -110, -1, 0, 1), ExtentThresholds)

	_, ok := r.Resolve(40, -100, day0)

	assert.False(t, ok)
}

func TestResolve_ForwardOnly(t *testing.T) {
	r := NewResolver(catalogWithDays(50, -110, 0, 1, 2), ExtentThresholds)

	extent, ok := r.Resolve(50, -110, day0)

	require.True(t, ok)
	assert.Equal(t, day0, extent.Start)
	assert.Equal(t, day0.AddDays(2), extent.End)
}

func TestResolver_Window(t *testing.T) {
	r := NewResolver(catalogWithDays(50, -110, -2, 0, 1, 5), ExtentThresholds)

	w := r.Window(50, -110, day0, 2)

	assert.Len(t, w, 4)
	assert.Len(t, w[day0.AddDays(-2)], 2)
	assert.Nil(t, w[day0.AddDays(-1)])
	assert.Len(t, w[day0], 2)
	assert.Len(t, w[day0.AddDays(1)], 2)
	assert.NotContains(t, w, day0.AddDays(2))
}

func TestResolver_Thresholds(t *testing.T) {
	r := NewResolver(NewCatalog(nil), SingleDayThresholds)
	assert.Equal(t, SingleDayThresholds, r.Thresholds())
}
