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

	"github.com/getsentry/sentry-go"
	"github.com/migodlcrz/mrt-system-sub000/internal/app"
	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
	"github.com/migodlcrz/mrt-system-sub000/internal/report"
)

// Declare a string containing the application version number. It is
// overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	var cfg config.Config

	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&cfg.Env, "env", "development", "Environment (development|staging|production)")
	flag.DurationVar(&cfg.RefreshInterval, "refresh-interval", 5*time.Minute, "Interval between station snapshot reloads")
	flag.IntVar(&cfg.MaxRetries, "max-retries", 3, "Retries for station, GTFS and config requests (0 retries until the request context ends)")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 50, "Requests per second allowed per client IP (0 disables limiting)")
	flag.Float64Var(&cfg.ServiceAreaMargin, "service-area-margin", 2000, "Meters a nearest-station lookup may lie outside a network's stations")

	var (
		configFile            = flag.String("config-file", "", "Path to a local JSON configuration file")
		configURL             = flag.String("config-url", "", "URL to a remote JSON configuration file")
		configRefreshInterval = flag.Duration("config-refresh-interval", time.Minute, "Interval between remote configuration reloads")
		logFormat             = flag.String("log-format", "text", "Log format (text|json)")
		httpTimeout           = flag.Duration("http-timeout", 30*time.Second, "Timeout for outgoing HTTP requests")
	)

	flag.Parse()

	configAuthUser := os.Getenv("CONFIG_AUTH_USER")
	configAuthPass := os.Getenv("CONFIG_AUTH_PASS")

	if err := config.ValidateConfigFlags(configFile, configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := newLogger(*logFormat)

	if err := report.SetupSentry(cfg.Env, version); err != nil {
		logger.Error("Failed to initialize Sentry", "error", err)
	}
	defer report.FlushSentry()
	report.ConfigureScope(cfg.Env, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := app.NewPooledClient(*httpTimeout)

	var (
		networks []models.Network
		err      error
	)
	if *configFile != "" {
		networks, err = config.LoadConfigFromFile(*configFile)
	} else {
		networks, err = config.LoadConfigFromURL(ctx, client, *configURL, configAuthUser, configAuthPass, cfg.MaxRetries)
	}
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateNetworks(networks); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg.Networks = networks

	application := app.New(&cfg, logger, client, version)

	// Load the station snapshots of all networks on startup. Networks that
	// fail here are loaded on demand by the first query.
	application.StationsService.LoadNetworks(ctx, cfg.GetNetworks())

	go application.StationsService.RefreshNetworks(ctx, &cfg, cfg.RefreshInterval)
	go application.RateLimiter.RunCleanup(ctx, time.Minute)
	application.StartMetricsCollection(ctx, 30*time.Second)

	if *configURL != "" {
		go application.ConfigService.RefreshConfig(ctx, *configURL, configAuthUser, configAuthPass, *configRefreshInterval)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: *httpTimeout + 10*time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	if err := serve(ctx, srv, logger); err != nil {
		report.ReportError(err, sentry.LevelFatal)
		report.FlushSentry()
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func newLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
