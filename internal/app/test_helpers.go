package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

const testNetworkID = 3

// newStationsServer serves the MRT-3 fixture as a station service.
func newStationsServer(t *testing.T) *httptest.Server {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "mrt3_stations.json"))
	if err != nil {
		t.Fatalf("Failed to read fixture file: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestApplication(t *testing.T, stationsURL string) *Application {
	t.Helper()

	network := models.NewNetwork("MRT-3", testNetworkID, stationsURL, "", "", "", "North Avenue")
	cfg := config.NewConfig(4000, "testing", []models.Network{*network})
	cfg.MaxRetries = 1

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger, NewPooledClient(5*time.Second), "test-version")
}

// serve sends a GET request through the full route and middleware stack.
func serve(t *testing.T, app *Application, target string) *httptest.ResponseRecorder {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	app.Routes(ctx).ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
