package geo

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/s2"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

// BoundingBox defines the corners of a lat/lon box
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains checks whether the given latitude and longitude are within the bounding box
func (b *BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Expand returns the box grown by marginMeters on every side. Longitude
// growth uses the latitude farthest from the equator so the margin is never
// narrower than requested. Bounds are clamped to ±90/±180.
func (b BoundingBox) Expand(marginMeters float64) BoundingBox {
	if marginMeters <= 0 {
		return b
	}
	latDelta := marginMeters / metersPerDegree
	out := BoundingBox{
		MinLat: math.Max(-90, b.MinLat-latDelta),
		MaxLat: math.Min(90, b.MaxLat+latDelta),
	}

	cosLat := math.Cos(toRadians(math.Max(math.Abs(out.MinLat), math.Abs(out.MaxLat))))
	if cosLat < 1e-6 {
		out.MinLon, out.MaxLon = -180, 180
		return out
	}
	lonDelta := latDelta / cosLat
	out.MinLon = math.Max(-180, b.MinLon-lonDelta)
	out.MaxLon = math.Min(180, b.MaxLon+lonDelta)
	return out
}

// IsValidLatLon reports whether lat and lon are finite and inside the
// geographic coordinate bounds (±90 latitude, ±180 longitude).
// (0,0) is a valid point.
func IsValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

// ComputeBoundingBox computes the bounding box of all stations with usable
// coordinates. Stations with invalid coordinates are ignored.
func ComputeBoundingBox(stations []models.Station) (BoundingBox, error) {
	if len(stations) == 0 {
		return BoundingBox{}, fmt.Errorf("no stations to compute bounding box")
	}

	rect := s2.EmptyRect()
	for _, station := range stations {
		if !IsValidLatLon(station.Latitude, station.Longitude) {
			continue
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(station.Latitude, station.Longitude))
	}

	if rect.IsEmpty() {
		return BoundingBox{}, fmt.Errorf("no valid latitude/longitude found in stations")
	}

	lo, hi := rect.Lo(), rect.Hi()
	return BoundingBox{
		MinLat: lo.Lat.Degrees(),
		MaxLat: hi.Lat.Degrees(),
		MinLon: lo.Lng.Degrees(),
		MaxLon: hi.Lng.Degrees(),
	}, nil
}

// BoundingBoxStore stores bounding boxes for each network in memory with concurrency safety
type BoundingBoxStore struct {
	mu    sync.RWMutex
	store map[int]BoundingBox
}

// NewBoundingBoxStore creates and returns a new BoundingBoxStore
func NewBoundingBoxStore() *BoundingBoxStore {
	return &BoundingBoxStore{
		store: make(map[int]BoundingBox),
	}
}

// Set stores a bounding box for a specific network ID
func (s *BoundingBoxStore) Set(networkID int, bbox BoundingBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[networkID] = bbox
}

// Get retrieves the bounding box for a specific network ID
func (s *BoundingBoxStore) Get(networkID int) (BoundingBox, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bbox, ok := s.store[networkID]
	return bbox, ok
}

// Delete forgets the bounding box of a network.
func (s *BoundingBoxStore) Delete(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, networkID)
}

// IsInBoundingBox checks if the lat/lon is inside the network's bounding box
func (s *BoundingBoxStore) IsInBoundingBox(networkID int, lat, lon float64) bool {
	return s.IsWithinMargin(networkID, lat, lon, 0)
}

// IsWithinMargin checks if the lat/lon is inside the network's bounding box
// grown by marginMeters.
func (s *BoundingBoxStore) IsWithinMargin(networkID int, lat, lon, marginMeters float64) bool {
	bbox, ok := s.Get(networkID)
	if !ok {
		return false
	}
	expanded := bbox.Expand(marginMeters)
	return expanded.Contains(lat, lon)
}
