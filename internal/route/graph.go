package route

import "github.com/migodlcrz/mrt-system-sub000/internal/models"

// Graph is a read-only view over a station snapshot that resolves adjacency
// ids to station records. It never mutates the stations it wraps, so one
// Graph can serve any number of concurrent searches.
type Graph struct {
	stations []models.Station
	index    map[string]int
}

// NewGraph indexes stations by id. When several records share an id the
// first one wins.
func NewGraph(stations []models.Station) *Graph {
	index := make(map[string]int, len(stations))
	for i, s := range stations {
		if _, exists := index[s.ID]; !exists {
			index[s.ID] = i
		}
	}
	return &Graph{stations: stations, index: index}
}

// Station resolves an id against the snapshot.
func (g *Graph) Station(id string) (models.Station, bool) {
	i, ok := g.index[id]
	if !ok {
		return models.Station{}, false
	}
	return g.stations[i], true
}

// StationByName returns the first station whose name matches exactly.
func (g *Graph) StationByName(name string) (models.Station, bool) {
	for _, s := range g.stations {
		if s.Name == name {
			return s, true
		}
	}
	return models.Station{}, false
}

// Stations returns the stations of the snapshot in their original order.
func (g *Graph) Stations() []models.Station {
	return g.stations
}

// Len returns the number of station records in the snapshot.
func (g *Graph) Len() int {
	return len(g.stations)
}
