//go:build integration

package integration

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/geo"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
	"github.com/migodlcrz/mrt-system-sub000/internal/stations"
)

var integrationConfig string

func init() {
	flag.StringVar(&integrationConfig, "integration-config", "", "Path to integration configuration file")
}

var integrationNetworks []models.Network

func TestMain(m *testing.M) {
	flag.Parse()

	if integrationConfig == "" {
		fmt.Fprintln(os.Stderr, "Error: -integration-config flag is required for integration tests")
		os.Exit(1)
	}

	networks, err := config.LoadConfigFromFile(integrationConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", integrationConfig, err)
		os.Exit(1)
	}
	if err := config.ValidateNetworks(networks); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid integration config: %v\n", err)
		os.Exit(1)
	}
	integrationNetworks = networks

	os.Exit(m.Run())
}

func newStationsService() *stations.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return stations.NewService(
		stations.NewSnapshotStore(),
		geo.NewBoundingBoxStore(),
		config.NewBackoffStore(),
		logger,
		&http.Client{Timeout: 60 * time.Second},
		3,
	)
}
