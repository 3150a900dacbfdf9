package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "-111.380000,56.720000")
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		resp := response{
			Features: []feature{
				{
					Center:    []float64{-111.3790, 56.7267},
					PlaceName: "Fort McMurray, Alberta, Canada",
					Text:      "Fort McMurray",
					Relevance: 0.98,
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	c := testClient(srv.URL, m)
	result, err := c.ReverseGeocode(context.Background(), 56.72, -111.38)
	require.NoError(t, err)

	assert.Equal(t, "Fort McMurray, Alberta, Canada", result.FormattedAddress)
	assert.Equal(t, "Fort McMurray", result.PlaceName)
	assert.Equal(t, 0.98, result.Confidence)
	assert.Equal(t, 56.7267, result.Lat)
	assert.Equal(t, -111.3790, result.Lon)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues("success")), 0)
}

func TestClient_ReverseGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	c := testClient(srv.URL, m)
	result, err := c.ReverseGeocode(context.Background(), 60.0, -130.0)
	require.NoError(t, err)
	assert.Empty(t, result.FormattedAddress)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues("empty")), 0)
}

func TestClient_ReverseGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	c := testClient(srv.URL, m)
	c.token = "bad-token"

	_, err := c.ReverseGeocode(context.Background(), 56.72, -111.38)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues("error")), 0)
}

func TestClient_ReverseGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.ReverseGeocode(context.Background(), 56.72, -111.38)
	require.Error(t, err)
}

func TestClient_ReverseGeocode_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.ReverseGeocode(context.Background(), 56.72, -111.38)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
