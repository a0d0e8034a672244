package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

// maxStationsBody caps the station service response size.
const maxStationsBody = 32 << 20

// fetchStations downloads the full station collection of a network from its
// station management service.
//
// The service answers with a JSON array of station records. When the network
// configures an API key header, the key is sent with the request.
func fetchStations(ctx context.Context, client *http.Client, network models.Network, maxRetries int) ([]models.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, network.StationsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", network.StationsURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if network.StationsAPIKeyHeader != "" && network.StationsAPIKey != "" {
		req.Header.Set(network.StationsAPIKeyHeader, network.StationsAPIKey)
	}

	resp, err := config.DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stations from %s: %w", network.StationsURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status %d when fetching stations from %s", resp.StatusCode, network.StationsURL)
	}

	var stations []models.Station
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStationsBody)).Decode(&stations); err != nil {
		return nil, fmt.Errorf("failed to decode stations from %s: %w", network.StationsURL, err)
	}
	return stations, nil
}
