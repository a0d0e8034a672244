package models

// Route is a connected sequence of stations from a start to an end station,
// inclusive, in traversal order. Distance is the sum of the great-circle
// distances between consecutive stations, in meters.
type Route struct {
	Stations []Station `json:"stations"`
	Distance float64   `json:"distance_m"`
}

// Hops returns the number of rail links travelled.
func (r Route) Hops() int {
	if len(r.Stations) == 0 {
		return 0
	}
	return len(r.Stations) - 1
}

// Kilometers returns the route distance in kilometers.
func (r Route) Kilometers() float64 {
	return r.Distance / 1000
}

// StationIDs returns the ids of the route's stations in order.
func (r Route) StationIDs() []string {
	ids := make([]string, 0, len(r.Stations))
	for _, s := range r.Stations {
		ids = append(ids, s.ID)
	}
	return ids
}
