//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	// Fort McMurray, AB
	result, err := c.ReverseGeocode(context.Background(), 56.7267, -111.3790)
	require.NoError(t, err)

	assert.NotEmpty(t, result.FormattedAddress)
	assert.NotEmpty(t, result.PlaceName)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_ReverseGeocode_Wilderness(t *testing.T) {
	c := smokeClient(t)

	// Northern boreal forest; coarse types should still resolve to a region.
	_, err := c.ReverseGeocode(context.Background(), 59.5, -117.5)
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ReverseGeocode(context.Background(), 55.2831, -114.7710)
	require.NoError(t, err)

	r2, err := cached.ReverseGeocode(context.Background(), 55.2831, -114.7710)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
