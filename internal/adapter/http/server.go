package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	"github.com/couchcryptid/fire-extent-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports the counters of the running pipeline.
type StatsProvider interface {
	Stats() pipeline.Stats
}

// ExtentResolver resolves an anchor against the loaded catalog.
type ExtentResolver interface {
	Resolve(lat, lng float64, reportDate domain.Date) (domain.FireExtent, bool)
}

// Server exposes health, readiness, metrics, and diagnostic HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, and /metrics
// routes. /stats is added when stats is non-nil, and /extent when resolver
// is non-nil.
func NewServer(addr string, ready sharedobs.ReadinessChecker, stats StatsProvider, resolver ExtentResolver, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if stats != nil {
		mux.HandleFunc("GET /stats", handleStats(stats))
	}
	if resolver != nil {
		mux.HandleFunc("GET /extent", s.handleExtent(resolver))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleStats(stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := stats.Stats()
		sharedobs.WriteJSON(w, http.StatusOK, map[string]int64{
			"read":     st.Read,
			"resolved": st.Resolved,
			"no_fire":  st.NoFire,
			"failed":   st.Failed,
		})
	}
}

type extentResponse struct {
	Start    domain.Date        `json:"start_date"`
	End      domain.Date        `json:"end_date"`
	Duration int                `json:"duration"`
	Summary  domain.FireSummary `json:"summary"`
}

// handleExtent resolves ?lat=&lng=&date=YYYY-MM-DD and returns the extent
// with its summary, or 404 when the anchor has no fire signature.
func (s *Server) handleExtent(resolver ExtentResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		date, errDate := domain.ParseDate(domain.DateLayout, q.Get("date"))
		if errLat != nil || errLng != nil || errDate != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error": "lat, lng and date (YYYY-MM-DD) are required",
			})
			return
		}
		occ := domain.Occurrence{Lat: lat, Lng: lng, ReportDate: date}
		if err := occ.Validate(); err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		extent, ok := resolver.Resolve(lat, lng, date)
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"status": "no fire"})
			return
		}
		s.logger.Debug("extent resolved", "lat", lat, "lng", lng, "date", date.String(), "days", extent.Days())
		sharedobs.WriteJSON(w, http.StatusOK, extentResponse{
			Start:    extent.Start,
			End:      extent.End,
			Duration: domain.Duration(extent.Start, extent.End),
			Summary:  domain.Summarize(extent),
		})
	}
}
