package stations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/geo"
	"github.com/migodlcrz/mrt-system-sub000/internal/metrics"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
	"github.com/migodlcrz/mrt-system-sub000/internal/report"
	"golang.org/x/sync/singleflight"
)

// ErrNoStationSource is returned for a network that configures neither a
// station service nor a GTFS bundle.
var ErrNoStationSource = errors.New("network has no station source")

type Service struct {
	Store            *SnapshotStore
	BoundingBoxStore *geo.BoundingBoxStore
	BackoffStore     *config.BackoffStore
	Logger           *slog.Logger
	Client           *http.Client
	MaxRetries       int

	// loads collapses concurrent on-demand loads of the same network.
	loads singleflight.Group
}

func NewService(store *SnapshotStore, boundingBoxStore *geo.BoundingBoxStore, backoffStore *config.BackoffStore, logger *slog.Logger, client *http.Client, maxRetries int) *Service {
	return &Service{
		Store:            store,
		BoundingBoxStore: boundingBoxStore,
		BackoffStore:     backoffStore,
		Logger:           logger,
		Client:           client,
		MaxRetries:       maxRetries,
	}
}

// LoadNetwork fetches the stations of one network and publishes them as the
// network's new snapshot. On failure the previous snapshot stays in place.
func (s *Service) LoadNetwork(ctx context.Context, network models.Network) (*Snapshot, error) {
	stations, err := s.fetch(ctx, network)
	if err != nil {
		metrics.RecordSnapshotLoad(network.ID, 0, 0, time.Time{}, err)
		return nil, err
	}
	if len(stations) == 0 {
		err = fmt.Errorf("no stations returned for network %d", network.ID)
		metrics.RecordSnapshotLoad(network.ID, 0, 0, time.Time{}, err)
		return nil, err
	}

	snap := NewSnapshot(network.ID, stations, time.Now().UTC())
	s.Store.Set(snap)

	dangling := snap.DanglingConnections()
	metrics.RecordSnapshotLoad(network.ID, snap.Graph.Len(), dangling, snap.FetchedAt, nil)
	if dangling > 0 {
		s.Logger.Warn("Snapshot contains connections to unknown stations",
			"network_id", network.ID, "dangling_connections", dangling)
	}

	bbox, err := geo.ComputeBoundingBox(stations)
	if err != nil {
		// The snapshot is still usable for routing between named stations.
		s.Logger.Warn("Could not compute bounding box", "network_id", network.ID, "error", err)
		s.BoundingBoxStore.Delete(network.ID)
	} else {
		s.BoundingBoxStore.Set(network.ID, bbox)
	}
	return snap, nil
}

func (s *Service) fetch(ctx context.Context, network models.Network) ([]models.Station, error) {
	switch {
	case network.StationsURL != "":
		return fetchStations(ctx, s.Client, network, s.MaxRetries)
	case network.GtfsURL != "":
		return downloadGTFSStations(ctx, s.Client, network.GtfsURL, s.MaxRetries)
	default:
		return nil, fmt.Errorf("network %d: %w", network.ID, ErrNoStationSource)
	}
}

// LoadNetworks loads every network concurrently. Failures are reported and
// logged per network and never abort the other loads. Networks still
// backing off from an earlier failure are skipped.
func (s *Service) LoadNetworks(ctx context.Context, networks []models.Network) {
	var wg sync.WaitGroup
	for _, network := range networks {
		n := network
		if s.BackoffStore != nil && s.BackoffStore.ShouldSkip(n.ID, time.Now()) {
			s.Logger.Info("Skipping network load due to backoff",
				"network_id", n.ID, "consecutive_failures", s.BackoffStore.Failures(n.ID))
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()

			snap, err := s.LoadNetwork(ctx, n)
			if err != nil {
				if s.BackoffStore != nil {
					s.BackoffStore.UpdateBackoff(n.ID)
				}
				report.ReportNetworkError(err, n, sentry.LevelError)
				s.Logger.Error("Failed to load stations", "network_id", n.ID, "error", err)
				return
			}
			if s.BackoffStore != nil {
				s.BackoffStore.ResetBackoff(n.ID)
			}
			s.Logger.Info("Successfully loaded stations",
				"network_id", n.ID, "stations", snap.Graph.Len(), "version", snap.Version)
		}()
	}
	wg.Wait()
}

// RefreshNetworks reloads all configured networks every interval until ctx
// is cancelled. The network list is read from cfg on every tick so remote
// configuration changes are picked up.
func (s *Service) RefreshNetworks(ctx context.Context, cfg *config.Config, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("Stopping station refresh routine")
			return
		case <-ticker.C:
			s.Logger.Info("Refreshing station snapshots")
			s.LoadNetworks(ctx, cfg.GetNetworks())
		}
	}
}

// Snapshot returns the current snapshot of network, loading it synchronously
// when nothing has been published yet. Concurrent callers share one load.
func (s *Service) Snapshot(ctx context.Context, network models.Network) (*Snapshot, error) {
	if snap, ok := s.Store.Get(network.ID); ok {
		return snap, nil
	}
	v, err, _ := s.loads.Do(strconv.Itoa(network.ID), func() (interface{}, error) {
		if snap, ok := s.Store.Get(network.ID); ok {
			return snap, nil
		}
		return s.LoadNetwork(ctx, network)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load stations for network %d: %w", network.ID, err)
	}
	return v.(*Snapshot), nil
}
