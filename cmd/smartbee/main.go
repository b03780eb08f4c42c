// Package main is the entry point for the SmartBee API. It loads
// configuration, builds the scenario catalog and middleware stack, starts the
// HTTP server, and handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dskow/smartbee-api/internal/config"
	"github.com/dskow/smartbee-api/internal/logging"
	"github.com/dskow/smartbee-api/internal/metrics"
	"github.com/dskow/smartbee-api/internal/middleware"
	"github.com/dskow/smartbee-api/internal/ratelimit"
	"github.com/dskow/smartbee-api/internal/scenario"
	"github.com/dskow/smartbee-api/internal/tlsutil"
)

func main() {
	configPath := flag.String("config", "configs/smartbee.yaml", "path to configuration file; defaults apply when it does not exist")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		slog.Error("smartbee exited with error", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, configPath string) error {
	cfg, fromFile, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	out, err := logging.Open(cfg.Logging)
	if err != nil {
		return fmt.Errorf("opening log output: %w", err)
	}
	defer out.Close()

	level := new(slog.LevelVar)
	level.Set(middleware.ParseLogLevel(cfg.Logging.Level))
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	for _, w := range cfg.Warnings {
		logger.Warn("config warning", "message", w)
	}
	logger.Info("configuration loaded",
		"path", configPath,
		"from_file", fromFile,
		"port", cfg.Server.Port,
		"tls", cfg.Server.TLS.Enabled,
		"metrics_enabled", cfg.Metrics.IsEnabled(),
		"rate_limit_enabled", cfg.RateLimit.Enabled,
		"admin_enabled", cfg.Admin.Enabled,
		"max_body_bytes", cfg.Server.MaxBodyBytes,
	)

	if cfg.Metrics.IsEnabled() {
		metrics.Init()
	}

	catalog := scenario.NewCatalog()
	summary := catalog.Summary()
	logger.Info("scenario catalog built",
		"stops", len(summary.Stops),
		"route_pairs", len(summary.RoutePairs),
		"demand_points", summary.DemandPoints,
		"delay_points", summary.DelayPoints,
		"roads", len(summary.Roads),
	)

	limiter := ratelimit.New(cfg.RateLimit, cfg.Server.TrustedProxies, endpointSet(cfg).Label, logger)
	defer limiter.Stop()

	levels := middleware.NewLevelTable(cfg.Logging.EndpointLevels)

	reloader := config.NewReloader(configPath, cfg, logger)
	reloader.OnReload(func(newCfg *config.Config) {
		limiter.UpdateConfig(newCfg.RateLimit)
		levels.Update(newCfg.Logging.EndpointLevels)
		level.Set(middleware.ParseLogLevel(newCfg.Logging.Level))
		if rw, ok := out.(*logging.RotatingWriter); ok {
			if err := rw.Reopen(); err != nil {
				logger.Error("reopening log file failed", "error", err)
			}
		}
	})
	if fromFile {
		reloader.Start()
		defer reloader.Stop()
	} else {
		logger.Info("config file not found, running with defaults", "path", configPath)
	}

	handler := buildHandler(deps{
		cfg:      cfg,
		provider: reloader,
		catalog:  catalog,
		logger:   logger,
		levels:   levels,
		limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	if cfg.Server.TLS.Enabled {
		certs, err := tlsutil.New(cfg.Server.TLS, logger)
		if err != nil {
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		defer certs.Stop()
		srv.TLSConfig = certs.TLSConfig()
	}

	return serve(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}

// serve runs srv until ctx is done or the listener fails.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting smartbee", "addr", srv.Addr, "tls", srv.TLSConfig != nil)
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("draining in-flight requests", "timeout", shutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("smartbee stopped gracefully")
	return nil
}
