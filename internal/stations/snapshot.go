package stations

import (
	"sync/atomic"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/models"
	"github.com/migodlcrz/mrt-system-sub000/internal/route"
)

var snapshotVersion atomic.Uint64

// Snapshot is an immutable, point-in-time copy of a network's stations.
// Route searches run against a Snapshot and never see a partial load.
type Snapshot struct {
	NetworkID int
	FetchedAt time.Time
	// Version increases with every snapshot built by the process and is used
	// to key cached route results.
	Version uint64
	Graph   *route.Graph
}

// NewSnapshot indexes stations into a new Snapshot. The caller must not
// modify stations afterwards.
func NewSnapshot(networkID int, stations []models.Station, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		NetworkID: networkID,
		FetchedAt: fetchedAt,
		Version:   snapshotVersion.Add(1),
		Graph:     route.NewGraph(stations),
	}
}

// Stations returns the snapshot's station records.
func (s *Snapshot) Stations() []models.Station {
	return s.Graph.Stations()
}

// DanglingConnections counts adjacency ids that do not resolve to a station
// of the snapshot. Route searches skip them.
func (s *Snapshot) DanglingConnections() int {
	count := 0
	for _, st := range s.Graph.Stations() {
		for _, id := range st.Connections {
			if _, ok := s.Graph.Station(id); !ok {
				count++
			}
		}
	}
	return count
}
