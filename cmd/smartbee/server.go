package main

import (
	"log/slog"
	"net/http"

	"github.com/dskow/smartbee-api/internal/admin"
	"github.com/dskow/smartbee-api/internal/api"
	"github.com/dskow/smartbee-api/internal/config"
	"github.com/dskow/smartbee-api/internal/health"
	"github.com/dskow/smartbee-api/internal/metrics"
	"github.com/dskow/smartbee-api/internal/middleware"
	"github.com/dskow/smartbee-api/internal/ratelimit"
	"github.com/dskow/smartbee-api/internal/routing"
	"github.com/dskow/smartbee-api/internal/scenario"
)

var adminPaths = []string{"/admin/config", "/admin/scenarios", "/admin/limiters"}

// deps are the long-lived components the handler tree is built from.
type deps struct {
	cfg      *config.Config
	provider admin.ConfigProvider
	catalog  *scenario.Catalog
	logger   *slog.Logger
	levels   *middleware.LevelTable
	limiter  *ratelimit.Limiter
	apiOpts  []api.Option
}

// endpointSet returns the bounded set of paths used as metric labels.
func endpointSet(cfg *config.Config) *routing.EndpointSet {
	paths := append([]string{}, api.Paths...)
	if cfg.Metrics.IsEnabled() {
		paths = append(paths, cfg.Metrics.Path)
	}
	if cfg.Admin.Enabled {
		paths = append(paths, adminPaths...)
	}
	return routing.NewEndpointSet(paths...)
}

// buildHandler registers every route and wraps the mux in the middleware
// stack:
// Recovery → RequestID → Metrics → SecurityHeaders → Logging → CORS →
// Deadline → BodyLimit → RateLimit → mux
func buildHandler(d deps) http.Handler {
	cfg := d.cfg

	mux := http.NewServeMux()
	api.New(d.catalog, cfg.Service, d.logger, d.apiOpts...).RegisterRoutes(mux)
	health.New(d.catalog, d.logger).RegisterRoutes(mux)

	if cfg.Metrics.IsEnabled() {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		d.logger.Info("metrics endpoint registered", "path", cfg.Metrics.Path)
	}
	if cfg.Admin.Enabled {
		admin.New(d.provider, d.limiter, d.catalog, cfg.Admin.IPAllowlist, d.logger).RegisterRoutes(mux)
		d.logger.Info("admin API enabled", "allowlist", cfg.Admin.IPAllowlist)
	}

	var handler http.Handler = mux
	handler = d.limiter.Middleware()(handler)
	handler = middleware.BodyLimit(cfg.Server.MaxBodyBytes)(handler)
	handler = middleware.Deadline(cfg.Server.GlobalTimeout())(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:         cfg.CORS.MaxAge,
	})(handler)
	handler = middleware.Logging(d.logger, middleware.AccessLog{
		Level:           d.levels.Level,
		Endpoint:        endpointSet(cfg).Label,
		ClientIP:        d.limiter.ClientIP,
		BodyLogging:     cfg.Logging.BodyLogging,
		MaxBodyLogBytes: cfg.Logging.MaxBodyLogBytes,
	})(handler)
	handler = middleware.SecurityHeaders()(handler)
	if cfg.Metrics.IsEnabled() {
		handler = middleware.Metrics(endpointSet(cfg).Label)(handler)
	}
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(d.logger)(handler)
	return handler
}
