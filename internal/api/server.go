// Package api serves the SmartBee endpoints. Each handler normalizes its
// request key, looks the scenario up in the catalog and assembles the JSON
// response around it.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dskow/smartbee-api/internal/apierror"
	"github.com/dskow/smartbee-api/internal/config"
	"github.com/dskow/smartbee-api/internal/metrics"
	"github.com/dskow/smartbee-api/internal/scenario"
)

// Endpoint paths.
const (
	PathRoot        = "/"
	PathArrivals    = "/api/arrivals"
	PathRoutes      = "/api/routes"
	PathHeatmap     = "/api/heatmap"
	PathRoadClosure = "/api/road-closure-impact"
	PathHealth      = "/health"
	PathReady       = "/ready"
)

// Paths lists every path the API answers on, for bounded metric labels.
var Paths = []string{PathRoot, PathArrivals, PathRoutes, PathHeatmap, PathRoadClosure, PathHealth, PathReady}

// Server holds the dependencies shared by the handlers. It carries no
// per-request state.
type Server struct {
	catalog  *scenario.Catalog
	service  config.ServiceConfig
	logger   *slog.Logger
	now      func() time.Time
	validate *validator.Validate
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces time.Now as the source of response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server over catalog. service is echoed by the root endpoint.
func New(catalog *scenario.Catalog, service config.ServiceConfig, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		catalog:  catalog,
		service:  service,
		logger:   logger,
		now:      time.Now,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes adds the API routes to mux. The root pattern also catches
// every path no other pattern claims and answers those with a JSON 404.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(PathRoot, s.root)
	mux.HandleFunc(PathArrivals, only(http.MethodGet, s.arrivals))
	mux.HandleFunc(PathRoutes, only(http.MethodGet, s.routes))
	mux.HandleFunc(PathHeatmap, only(http.MethodGet, s.heatmap))
	mux.HandleFunc(PathRoadClosure, only(http.MethodPost, s.roadClosure))
}

// only rejects requests whose method differs from method.
func only(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			apierror.WriteMethodNotAllowed(w, r, method)
			return
		}
		next(w, r)
	}
}

// lookup records a catalog lookup outcome.
func (s *Server) lookup(table, key string, found bool) {
	metrics.ScenarioLookups.WithLabelValues(table, metrics.Outcome(found)).Inc()
	if !found {
		s.logger.Debug("scenario key not found, serving default", "table", table, "key", key)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
