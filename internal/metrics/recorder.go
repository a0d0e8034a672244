package metrics

import (
	"strconv"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

// Route query outcomes used as the "outcome" label of RouteQueries.
const (
	OutcomeFound           = "found"
	OutcomeNoRoute         = "no_route"
	OutcomeStationNotFound = "station_not_found"
	OutcomeError           = "error"
)

// RecordRouteQuery counts one route query and, when a route was found,
// observes its distance and hop count.
func RecordRouteQuery(networkID int, outcome string, route models.Route) {
	id := strconv.Itoa(networkID)
	RouteQueries.WithLabelValues(id, outcome).Inc()
	if outcome != OutcomeFound {
		return
	}
	RouteDistance.WithLabelValues(id).Observe(route.Distance)
	RouteHops.WithLabelValues(id).Observe(float64(route.Hops()))
}

// RecordSnapshotLoad updates the snapshot gauges of a network after a load attempt.
func RecordSnapshotLoad(networkID int, stations int, dangling int, loadedAt time.Time, err error) {
	id := strconv.Itoa(networkID)
	if err != nil {
		SnapshotLoadStatus.WithLabelValues(id).Set(0)
		return
	}
	SnapshotLoadStatus.WithLabelValues(id).Set(1)
	SnapshotStations.WithLabelValues(id).Set(float64(stations))
	DanglingConnections.WithLabelValues(id).Set(float64(dangling))
	SnapshotLastLoaded.WithLabelValues(id).Set(float64(loadedAt.Unix()))
}

// RecordCacheLookup counts a route cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RouteCache.WithLabelValues("hit").Inc()
		return
	}
	RouteCache.WithLabelValues("miss").Inc()
}

// RecordSnapshotAge sets the age of a network's current snapshot.
func RecordSnapshotAge(networkID int, fetchedAt, now time.Time) {
	SnapshotAge.WithLabelValues(strconv.Itoa(networkID)).Set(now.Sub(fetchedAt).Seconds())
}

// ForgetNetwork removes the snapshot series of a network that is no longer
// configured.
func ForgetNetwork(networkID int) {
	id := strconv.Itoa(networkID)
	SnapshotStations.DeleteLabelValues(id)
	SnapshotLoadStatus.DeleteLabelValues(id)
	SnapshotLastLoaded.DeleteLabelValues(id)
	SnapshotAge.DeleteLabelValues(id)
	DanglingConnections.DeleteLabelValues(id)
}
