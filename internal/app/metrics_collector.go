package app

import (
	"context"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/metrics"
)

// StartMetricsCollection updates snapshot age gauges every interval and
// drops the snapshots of networks removed from the configuration. It runs
// until ctx is cancelled.
func (app *Application) StartMetricsCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				app.CollectSnapshotMetrics(now)
			}
		}
	}()
}

func (app *Application) CollectSnapshotMetrics(now time.Time) {
	configured := make(map[int]bool)
	for _, network := range app.ConfigService.Config.GetNetworks() {
		configured[network.ID] = true
	}

	store := app.StationsService.Store
	for _, id := range store.NetworkIDs() {
		if !configured[id] {
			store.Delete(id)
			metrics.ForgetNetwork(id)
			app.Logger.Info("Dropped snapshot of unconfigured network", "network_id", id)
			continue
		}
		if snap, ok := store.Get(id); ok {
			metrics.RecordSnapshotAge(id, snap.FetchedAt, now)
		}
	}
}
