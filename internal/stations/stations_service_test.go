package stations

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/geo"
	"github.com/migodlcrz/mrt-system-sub000/internal/metrics"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, logger *slog.Logger) *Service {
	t.Helper()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return NewService(NewSnapshotStore(), geo.NewBoundingBoxStore(), config.NewBackoffStore(), logger, &http.Client{Timeout: 5 * time.Second}, 1)
}

func TestLoadNetwork_StationsURL(t *testing.T) {
	server := setupStaticServer(t, "application/json", readFixture(t, "mrt3_stations.json"))
	svc := newTestService(t, nil)
	network := models.Network{ID: 11, Name: "MRT-3", StationsURL: server.URL}

	snap, err := svc.LoadNetwork(context.Background(), network)
	require.NoError(t, err)
	assert.Equal(t, 13, snap.Graph.Len())

	stored, ok := svc.Store.Get(11)
	require.True(t, ok)
	assert.Same(t, snap, stored)

	bbox, ok := svc.BoundingBoxStore.Get(11)
	require.True(t, ok)
	assert.InDelta(t, 14.5376, bbox.MinLat, 1e-9)
	assert.InDelta(t, 14.6522, bbox.MaxLat, 1e-9)
	assert.True(t, svc.BoundingBoxStore.IsInBoundingBox(11, 14.6, 121.04))

	stations, err := metrics.GaugeValue(metrics.SnapshotStations, "11")
	require.NoError(t, err)
	assert.Equal(t, 13.0, stations)
	status, err := metrics.GaugeValue(metrics.SnapshotLoadStatus, "11")
	require.NoError(t, err)
	assert.Equal(t, 1.0, status)
}

func TestLoadNetwork_GtfsURL(t *testing.T) {
	server := setupStaticServer(t, "application/zip", buildGTFSZip(t, lineGTFSFiles()))
	svc := newTestService(t, nil)

	snap, err := svc.LoadNetwork(context.Background(), models.Network{ID: 12, GtfsURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Graph.Len())
}

func TestLoadNetwork_Failures(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		svc := newTestService(t, nil)
		_, err := svc.LoadNetwork(context.Background(), models.Network{ID: 13})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoStationSource))
	})

	t.Run("empty collection", func(t *testing.T) {
		server := setupStaticServer(t, "application/json", []byte(`[]`))
		svc := newTestService(t, nil)
		_, err := svc.LoadNetwork(context.Background(), models.Network{ID: 14, StationsURL: server.URL})
		require.Error(t, err)

		status, err := metrics.GaugeValue(metrics.SnapshotLoadStatus, "14")
		require.NoError(t, err)
		assert.Equal(t, 0.0, status)
	})

	t.Run("failed reload keeps previous snapshot", func(t *testing.T) {
		var fail atomic.Bool
		fixture := readFixture(t, "mrt3_stations.json")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				http.Error(w, "unavailable", http.StatusNotFound)
				return
			}
			w.Write(fixture)
		}))
		defer server.Close()

		svc := newTestService(t, nil)
		network := models.Network{ID: 15, StationsURL: server.URL}
		first, err := svc.LoadNetwork(context.Background(), network)
		require.NoError(t, err)

		fail.Store(true)
		_, err = svc.LoadNetwork(context.Background(), network)
		require.Error(t, err)

		current, ok := svc.Store.Get(15)
		require.True(t, ok)
		assert.Same(t, first, current)
	})
}

func TestLoadNetworks(t *testing.T) {
	server := setupStaticServer(t, "application/json", readFixture(t, "mrt3_stations.json"))

	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, nil))
	svc := newTestService(t, logger)

	networks := []models.Network{
		{ID: 21, Name: "good", StationsURL: server.URL},
		{ID: 22, Name: "broken"},
	}
	svc.LoadNetworks(context.Background(), networks)

	_, ok := svc.Store.Get(21)
	assert.True(t, ok)
	_, ok = svc.Store.Get(22)
	assert.False(t, ok)

	assert.True(t, svc.BackoffStore.ShouldSkip(22, time.Now()), "failed network should back off")
	assert.False(t, svc.BackoffStore.ShouldSkip(21, time.Now()))
	assert.Contains(t, logBuffer.String(), "Failed to load stations")

	logBuffer.Reset()
	svc.LoadNetworks(context.Background(), networks)
	assert.Contains(t, logBuffer.String(), "Skipping network load due to backoff")
}

func TestRefreshNetworks(t *testing.T) {
	var hits atomic.Int32
	fixture := readFixture(t, "mrt3_stations.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(fixture)
	}))
	defer server.Close()

	svc := newTestService(t, nil)
	cfg := config.NewConfig(0, "test", []models.Network{{ID: 31, StationsURL: server.URL}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RefreshNetworks(ctx, cfg, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ok := svc.Store.Get(31)
		return ok && hits.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RefreshNetworks did not stop after cancellation")
	}
}

func TestSnapshot_LoadsOnDemand(t *testing.T) {
	var hits atomic.Int32
	fixture := readFixture(t, "mrt3_stations.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(fixture)
	}))
	defer server.Close()

	svc := newTestService(t, nil)
	network := models.Network{ID: 41, StationsURL: server.URL}

	snap, err := svc.Snapshot(context.Background(), network)
	require.NoError(t, err)
	again, err := svc.Snapshot(context.Background(), network)
	require.NoError(t, err)

	assert.Same(t, snap, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSnapshot_ConcurrentFirstLoadsShareOneFetch(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	fixture := readFixture(t, "mrt3_stations.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write(fixture)
	}))
	defer server.Close()

	svc := newTestService(t, nil)
	network := models.Network{ID: 42, StationsURL: server.URL}

	const callers = 8
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], errs[i] = svc.Snapshot(context.Background(), network)
		}(i)
	}

	require.Eventually(t, func() bool { return hits.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, snaps[0], snaps[i])
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoadNetwork_DropsStaleBoundingBox(t *testing.T) {
	var valid atomic.Bool
	valid.Store(true)
	fixture := readFixture(t, "mrt3_stations.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if valid.Load() {
			w.Write(fixture)
			return
		}
		w.Write([]byte(`[{"_id":"x1","name":"Unmapped","connections":[]}]`))
	}))
	defer server.Close()

	svc := newTestService(t, nil)
	network := models.Network{ID: 43, StationsURL: server.URL}

	_, err := svc.LoadNetwork(context.Background(), network)
	require.NoError(t, err)
	_, ok := svc.BoundingBoxStore.Get(43)
	require.True(t, ok)

	valid.Store(false)
	snap, err := svc.LoadNetwork(context.Background(), network)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Graph.Len())

	_, ok = svc.BoundingBoxStore.Get(43)
	assert.False(t, ok, "bounding box of the previous snapshot must not outlive it")
}
