// Package httpapi serves almanac snapshots and lunar phase listings over
// HTTP, together with health, readiness and metrics endpoints.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/litescript/lunas/internal/config"
	"github.com/litescript/lunas/internal/discrete"
	"github.com/litescript/lunas/internal/ephem"
	"github.com/litescript/lunas/internal/observability"
	"github.com/litescript/lunas/internal/snapshot"
)

// Source hands out the process-wide ephemeris provider. *ephem.Shared
// satisfies it.
type Source interface {
	Get() (ephem.Provider, error)
	Ready() bool
}

// Server exposes the almanac API.
type Server struct {
	httpServer *http.Server
	source     Source
	clock      clockwork.Clock
	policy     snapshot.OffsetPolicy
	search     discrete.Options
	cache      *lru.Cache[string, *snapshot.Snapshot]
	group      singleflight.Group
	metrics    *observability.Metrics
	log        zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for "now" and for requests without a date.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// NewServer creates the HTTP server for cfg.
func NewServer(cfg *config.Config, source Source, metrics *observability.Metrics, logger zerolog.Logger, opts ...Option) (*Server, error) {
	cache, err := lru.New[string, *snapshot.Snapshot](cfg.SnapshotCacheSize)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}

	s := &Server{
		source:  source,
		clock:   clockwork.NewRealClock(),
		policy:  cfg.OffsetPolicy,
		search:  cfg.SearchOptions(),
		cache:   cache,
		metrics: metrics,
		log:     logger.With().Str("component", "httpapi").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.routes(cfg.HTTPTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/now", s.handleNow)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deadline(timeout))
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/phases", s.handlePhases)
	})

	return r
}

// deadline bounds each request's context. Almanac searches observe it
// through ephem.WithContext and stop at their next position query.
func deadline(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server starting")
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

// instrument records request metrics and an access log line per request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.metrics.Requests.WithLabelValues(route, fmt.Sprint(status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		s.log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
