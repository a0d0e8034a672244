package route

import (
	"errors"
	"fmt"

	"github.com/migodlcrz/mrt-system-sub000/internal/geo"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

var (
	// ErrStationNotFound is returned by ComputeRoute when an endpoint id is
	// not part of the snapshot.
	ErrStationNotFound = errors.New("station not found in snapshot")

	// ErrInvalidCoordinates is returned when a station on a found route has
	// no usable coordinates.
	ErrInvalidCoordinates = errors.New("station has invalid coordinates")
)

// queueEntry is one element of the breadth-first queue. parent points at the
// entry the station was discovered from, -1 for the start entry, so the path
// to any entry is recovered by walking parents instead of copying it.
type queueEntry struct {
	station models.Station
	parent  int
}

// FindPath searches stations breadth-first for a route from start to end.
//
// The returned route is hop-minimal: it has the fewest stations, and among
// equally short routes it is the one reached first by adjacency-list order.
// It is not necessarily the shortest route by distance.
//
// found is false when end is unreachable from start. Adjacency ids that do
// not resolve to a station are skipped. An error is returned only when a
// station on the found route has unusable coordinates.
func FindPath(start, end models.Station, stations []models.Station) (route models.Route, found bool, err error) {
	return NewGraph(stations).FindPath(start, end)
}

// ComputeRoute resolves startID and endID in the snapshot and finds a route
// between them.
func ComputeRoute(stations []models.Station, startID, endID string) (models.Route, bool, error) {
	g := NewGraph(stations)

	start, ok := g.Station(startID)
	if !ok {
		return models.Route{}, false, fmt.Errorf("start %q: %w", startID, ErrStationNotFound)
	}
	end, ok := g.Station(endID)
	if !ok {
		return models.Route{}, false, fmt.Errorf("end %q: %w", endID, ErrStationNotFound)
	}

	return g.FindPath(start, end)
}

// FindPath runs the breadth-first search of the package-level FindPath
// against the graph.
func (g *Graph) FindPath(start, end models.Station) (models.Route, bool, error) {
	entries := []queueEntry{{station: start, parent: -1}}
	visited := make(map[string]bool)

	// entries doubles as the FIFO queue; head is the next entry to dequeue.
	for head := 0; head < len(entries); head++ {
		current := entries[head]
		visited[current.station.ID] = true

		if current.station.ID == end.ID {
			stations := pathTo(entries, head)
			distance, err := Distance(stations)
			if err != nil {
				return models.Route{}, false, err
			}
			return models.Route{Stations: stations, Distance: distance}, true, nil
		}

		for _, id := range current.station.Connections {
			next, ok := g.Station(id)
			if !ok || visited[id] {
				continue
			}
			entries = append(entries, queueEntry{station: next, parent: head})
		}
	}

	return models.Route{}, false, nil
}

// pathTo rebuilds the station sequence ending at entries[i].
func pathTo(entries []queueEntry, i int) []models.Station {
	depth := 0
	for j := i; j != -1; j = entries[j].parent {
		depth++
	}

	path := make([]models.Station, depth)
	for j := i; j != -1; j = entries[j].parent {
		depth--
		path[depth] = entries[j].station
	}
	return path
}

// Distance sums the great-circle distance between consecutive stations.
func Distance(stations []models.Station) (float64, error) {
	for _, s := range stations {
		if !geo.IsValidLatLon(s.Latitude, s.Longitude) {
			return 0, fmt.Errorf("station %q (%s): %w", s.ID, s.Name, ErrInvalidCoordinates)
		}
	}

	var total float64
	for i := 1; i < len(stations); i++ {
		a, b := stations[i-1], stations[i]
		total += geo.HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	}
	return total, nil
}
