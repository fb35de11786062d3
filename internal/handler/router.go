package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Router assembles the HTTP surface: the JSON API, health check and
// optional metrics endpoint.
type Router struct {
	api         *APIHandler
	metrics     *Metrics
	registry    *prometheus.Registry
	metricsPath string
	logger      zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	API         *APIHandler
	Registry    *prometheus.Registry // nil disables metrics
	MetricsPath string
	Logger      zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	rt := &Router{
		api:         cfg.API,
		registry:    cfg.Registry,
		metricsPath: cfg.MetricsPath,
		logger:      cfg.Logger.With().Str("component", "router").Logger(),
	}
	if cfg.Registry != nil {
		rt.metrics = NewMetrics(cfg.Registry)
	}
	return rt
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(rt.requestLogger)
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}

	r.Get("/health", rt.handleHealth)
	if rt.registry != nil {
		path := rt.metricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	rt.api.RegisterRoutes(r)

	return r
}

// handleHealth handles health check requests.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// requestLogger logs one line per request.
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rt.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
