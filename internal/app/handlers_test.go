package app

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/migodlcrz/mrt-system-sub000/internal/fare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheckHandler(t *testing.T) {
	server := newStationsServer(t)
	app := newTestApplication(t, server.URL)

	t.Run("not ready before any snapshot is loaded", func(t *testing.T) {
		rr := serve(t, app, "/v1/healthcheck")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var resp HealthStatus
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Ready)
		assert.Equal(t, 1, resp.Networks)
		assert.Equal(t, 0, resp.LoadedNetworks)
	})

	t.Run("ready once a network is loaded", func(t *testing.T) {
		app.StationsService.LoadNetworks(context.Background(), app.ConfigService.Config.GetNetworks())

		rr := serve(t, app, "/v1/healthcheck")
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp HealthStatus
		decodeBody(t, rr, &resp)
		assert.Equal(t, "available", resp.Status)
		assert.Equal(t, "testing", resp.Environment)
		assert.Equal(t, "test-version", resp.Version)
		assert.Equal(t, 1, resp.LoadedNetworks)
		assert.True(t, resp.Ready)
	})
}

func TestStationsHandler(t *testing.T) {
	server := newStationsServer(t)
	app := newTestApplication(t, server.URL)

	rr := serve(t, app, "/v1/networks/3/stations")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	var resp struct {
		NetworkID    int    `json:"network_id"`
		Name         string `json:"name"`
		StationCount int    `json:"station_count"`
		BoundingBox  *struct {
			MinLat float64 `json:"min_lat"`
			MaxLat float64 `json:"max_lat"`
		} `json:"bounding_box"`
		Stations []struct {
			ID          string   `json:"id"`
			Name        string   `json:"name"`
			Connections []string `json:"connections"`
		} `json:"stations"`
	}
	decodeBody(t, rr, &resp)
	assert.Equal(t, 3, resp.NetworkID)
	assert.Equal(t, "MRT-3", resp.Name)
	assert.Equal(t, 13, resp.StationCount)
	require.Len(t, resp.Stations, 13)
	assert.Equal(t, "mrt3-01", resp.Stations[0].ID)
	require.NotNil(t, resp.BoundingBox)
	assert.InDelta(t, 14.5376, resp.BoundingBox.MinLat, 1e-9)
}

func TestRouteHandler(t *testing.T) {
	server := newStationsServer(t)
	app := newTestApplication(t, server.URL)

	t.Run("found", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/route?from=North+Avenue&to=Taft+Avenue")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp fare.Result
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Found)
		assert.Equal(t, 12, resp.Hops)
		assert.InDelta(t, 16397.85, resp.DistanceMeters, 0.01)
		assert.Len(t, resp.Route.Stations, 13)
	})

	t.Run("by id", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/route?from=mrt3-05&to=mrt3-05")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp fare.Result
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Found)
		assert.Zero(t, resp.DistanceMeters)
	})

	tests := []struct {
		name   string
		target string
		status int
		errMsg string
	}{
		{"missing parameters", "/v1/networks/3/route?from=Ayala", http.StatusBadRequest, "required"},
		{"unknown station", "/v1/networks/3/route?from=Recto&to=Ayala", http.StatusNotFound, "station not found"},
		{"unknown network", "/v1/networks/9/route?from=Boni&to=Ayala", http.StatusNotFound, "network not found"},
		{"non numeric network", "/v1/networks/mrt/route?from=Boni&to=Ayala", http.StatusNotFound, "network not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, app, tt.target)
			assert.Equal(t, tt.status, rr.Code)

			var resp map[string]string
			decodeBody(t, rr, &resp)
			assert.Contains(t, resp["error"], tt.errMsg)
		})
	}
}

func TestRouteHandler_StationServiceDown(t *testing.T) {
	server := newStationsServer(t)
	server.Close()
	app := newTestApplication(t, server.URL)

	rr := serve(t, app, "/v1/networks/3/route?from=Boni&to=Ayala")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestScanHandler(t *testing.T) {
	server := newStationsServer(t)
	app := newTestApplication(t, server.URL)

	t.Run("from reference station", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/scan/Ortigas")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp fare.Result
		decodeBody(t, rr, &resp)
		assert.Equal(t, "mrt3-01", resp.From.ID)
		assert.Equal(t, "mrt3-06", resp.To.ID)
		assert.Equal(t, 5, resp.Hops)
	})

	t.Run("explicit origin", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/scan/mrt3-06?origin=mrt3-07")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp fare.Result
		decodeBody(t, rr, &resp)
		assert.Equal(t, 1, resp.Hops)
	})
}

func TestNearestHandler(t *testing.T) {
	server := newStationsServer(t)
	app := newTestApplication(t, server.URL)

	t.Run("nearest station", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/nearest?lat=14.5813&lon=121.0535")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Station struct {
				Name string `json:"name"`
			} `json:"station"`
			DistanceMeters float64 `json:"distance_m"`
		}
		decodeBody(t, rr, &resp)
		assert.Equal(t, "Shaw Boulevard", resp.Station.Name)
		assert.Less(t, resp.DistanceMeters, 30.0)
	})

	t.Run("bad coordinates", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/nearest?lat=north&lon=121")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("out of range", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/nearest?lat=95&lon=121")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("outside service area", func(t *testing.T) {
		rr := serve(t, app, "/v1/networks/3/nearest?lat=10.3157&lon=123.8854")
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestRoutes_NotFoundAndMetrics(t *testing.T) {
	app := newTestApplication(t, "http://stations.test")

	rr := serve(t, app, "/v1/unknown")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "could not be found"))

	rr = serve(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
