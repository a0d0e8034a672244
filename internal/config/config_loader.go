package config

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
	"github.com/migodlcrz/mrt-system-sub000/internal/report"
	"github.com/migodlcrz/mrt-system-sub000/internal/utils"
)

// ValidateConfigFlags ensures that only one configuration source is specified:
// either a config file "--config-file", a remote config URL "--config-url".
//
// Returns an error if more than one input method is specified.
func ValidateConfigFlags(configFile, configURL *string) error {
	if *configFile == "" && *configURL == "" {
		return fmt.Errorf("no configuration provided, either --config-file or --config-url must be specified")
	}
	if (*configFile != "" && *configURL != "") || (*configFile != "" && len(flag.Args()) > 0) || (*configURL != "" && len(flag.Args()) > 0) {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// ValidateNetworks checks that every network has a unique id and at least
// one station source.
func ValidateNetworks(networks []models.Network) error {
	if len(networks) == 0 {
		return fmt.Errorf("no networks found in configuration")
	}
	seen := make(map[int]bool, len(networks))
	for _, n := range networks {
		if seen[n.ID] {
			return fmt.Errorf("duplicate network id %d", n.ID)
		}
		seen[n.ID] = true
		if n.StationsURL == "" && n.GtfsURL == "" {
			return fmt.Errorf("network %d (%s) has neither stations_url nor gtfs_url", n.ID, n.Name)
		}
	}
	return nil
}

// refreshConfig periodically fetches the configuration from a remote URL and
// replaces the configured networks.
//
// Errors during fetch or parse are logged and reported to Sentry, but the loop
// continues and the previous networks stay in place.
//
// The routine stops when the context is canceled.
func refreshConfig(ctx context.Context, client *http.Client, configURL, configAuthUser, configAuthPass string, cfg *Config, logger *slog.Logger, interval time.Duration, maxRetries int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping config refresh routine")
			return
		case <-ticker.C:
			newNetworks, err := loadConfigFromURL(ctx, client, configURL, configAuthUser, configAuthPass, maxRetries)
			if err == nil {
				err = ValidateNetworks(newNetworks)
			}
			if err != nil {
				report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
					Tags:  utils.MakeMap("config_url", configURL),
					Level: sentry.LevelError,
				})
				logger.Error("Failed to refresh remote config", "error", err)
				continue
			}
			cfg.UpdateConfig(newNetworks)
			logger.Info("Successfully refreshed network configuration", "networks", len(newNetworks))
		}
	}
}

// loadConfigFromFile reads a JSON configuration file from disk and unmarshals it
// into a list of network configurations.
//
// This function is used when the application is configured to load its networks
// from a static file using the --config-file flag.
func loadConfigFromFile(filePath string) ([]models.Network, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var networks []models.Network
	if err := json.Unmarshal(data, &networks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return networks, nil
}

// loadConfigFromURL fetches a JSON configuration from a remote HTTP(S) endpoint,
// using the provided client and optional basic authentication.
//
// It validates the response status, reads the body, and unmarshals the configuration
// into a slice of models.Network.
func loadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) ([]models.Network, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote config returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote config: %w", err)
	}

	var networks []models.Network
	if err := json.Unmarshal(data, &networks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return networks, nil
}
