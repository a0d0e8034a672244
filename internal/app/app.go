package app

import (
	"log/slog"
	"net/http"

	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/fare"
	"github.com/migodlcrz/mrt-system-sub000/internal/geo"
	"github.com/migodlcrz/mrt-system-sub000/internal/middleware"
	"github.com/migodlcrz/mrt-system-sub000/internal/stations"
)

// Application wires the configuration, station loading and route query
// services together and serves them over HTTP.
type Application struct {
	ConfigService   *config.ConfigService
	StationsService *stations.Service
	FareService     *fare.Service
	RateLimiter     *middleware.RateLimiter
	Logger          *slog.Logger
	Version         string
}

// New creates and wires all dependencies for the Application.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, version string) *Application {
	snapshotStore := stations.NewSnapshotStore()
	boundingBoxStore := geo.NewBoundingBoxStore()
	backoffStore := config.NewBackoffStore()

	configService := config.NewConfigService(logger, client, cfg)
	stationsService := stations.NewService(snapshotStore, boundingBoxStore, backoffStore, logger, client, cfg.MaxRetries)
	fareService := fare.NewService(cfg, stationsService, boundingBoxStore, logger)
	if cfg.ServiceAreaMargin > 0 {
		fareService.ServiceAreaMargin = cfg.ServiceAreaMargin
	}

	return &Application{
		ConfigService:   configService,
		StationsService: stationsService,
		FareService:     fareService,
		RateLimiter:     middleware.NewRateLimiter(cfg.RateLimit),
		Logger:          logger,
		Version:         version,
	}
}
