package fare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/geo"
	"github.com/migodlcrz/mrt-system-sub000/internal/metrics"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
	"github.com/migodlcrz/mrt-system-sub000/internal/route"
	"github.com/migodlcrz/mrt-system-sub000/internal/stations"
	"github.com/patrickmn/go-cache"
)

var (
	ErrNetworkNotFound = errors.New("network not found")
	ErrStationNotFound = errors.New("station not found")
	// ErrNoOrigin is returned by Scan when the request has no origin and the
	// network has no reference station configured.
	ErrNoOrigin = errors.New("no origin station given and network has no reference station")
	// ErrInvalidLocation is returned for a coordinate pair outside the valid
	// latitude/longitude range.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrOutsideServiceArea is returned when a location lies outside the
	// bounding box of a network's stations.
	ErrOutsideServiceArea = errors.New("location is outside the network's service area")
)

const (
	DefaultCacheTTL      = 5 * time.Minute
	cacheCleanupInterval = 10 * time.Minute

	// DefaultServiceAreaMargin is how far, in meters, a location may lie
	// outside the box around a network's stations and still be served.
	DefaultServiceAreaMargin = 2000.0
)

// SnapshotProvider hands out the current station snapshot of a network.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, network models.Network) (*stations.Snapshot, error)
}

// Result is the outcome of a route query between two stations.
// Found is false when the stations are not connected; Route is then empty.
type Result struct {
	NetworkID      int            `json:"network_id"`
	From           models.Station `json:"from"`
	To             models.Station `json:"to"`
	Found          bool           `json:"found"`
	Route          models.Route   `json:"route"`
	Hops           int            `json:"hops"`
	DistanceMeters float64        `json:"distance_m"`
	DistanceKm     float64        `json:"distance_km"`
	SnapshotAt     time.Time      `json:"snapshot_at"`
}

// Service resolves the endpoints of a query against a network's current
// snapshot and runs the route search.
type Service struct {
	Config        *config.Config
	Snapshots     SnapshotProvider
	BoundingBoxes *geo.BoundingBoxStore
	Cache         *cache.Cache
	Logger        *slog.Logger

	// ServiceAreaMargin grows the station bounding box, in meters, for Nearest.
	ServiceAreaMargin float64
}

func NewService(cfg *config.Config, snapshots SnapshotProvider, boundingBoxes *geo.BoundingBoxStore, logger *slog.Logger) *Service {
	return &Service{
		Config:        cfg,
		Snapshots:     snapshots,
		BoundingBoxes: boundingBoxes,
		Cache:         cache.New(DefaultCacheTTL, cacheCleanupInterval),
		Logger:        logger,

		ServiceAreaMargin: DefaultServiceAreaMargin,
	}
}

func (s *Service) snapshot(ctx context.Context, networkID int) (models.Network, *stations.Snapshot, error) {
	network, ok := s.Config.GetNetwork(networkID)
	if !ok {
		return models.Network{}, nil, fmt.Errorf("network %d: %w", networkID, ErrNetworkNotFound)
	}
	snap, err := s.Snapshots.Snapshot(ctx, network)
	if err != nil {
		return network, nil, err
	}
	return network, snap, nil
}

// Query finds the route between the stations named from and to.
func (s *Service) Query(ctx context.Context, networkID int, from, to string) (Result, error) {
	_, snap, err := s.snapshot(ctx, networkID)
	if err != nil {
		metrics.RecordRouteQuery(networkID, metrics.OutcomeError, models.Route{})
		return Result{}, err
	}
	return s.query(snap, from, to)
}

// Scan answers a tap at the scanned station. The trip is measured from
// origin, or from the network's reference station when origin is empty.
func (s *Service) Scan(ctx context.Context, networkID int, scanned, origin string) (Result, error) {
	network, snap, err := s.snapshot(ctx, networkID)
	if err != nil {
		metrics.RecordRouteQuery(networkID, metrics.OutcomeError, models.Route{})
		return Result{}, err
	}
	if origin == "" {
		origin = network.ReferenceStation
	}
	if origin == "" {
		return Result{}, fmt.Errorf("network %d: %w", networkID, ErrNoOrigin)
	}
	return s.query(snap, origin, scanned)
}

func (s *Service) query(snap *stations.Snapshot, from, to string) (Result, error) {
	start, err := resolveStation(snap.Graph, from)
	if err != nil {
		metrics.RecordRouteQuery(snap.NetworkID, metrics.OutcomeStationNotFound, models.Route{})
		return Result{}, err
	}
	end, err := resolveStation(snap.Graph, to)
	if err != nil {
		metrics.RecordRouteQuery(snap.NetworkID, metrics.OutcomeStationNotFound, models.Route{})
		return Result{}, err
	}

	key := cacheKey(snap, start.ID, end.ID)
	if cached, ok := s.Cache.Get(key); ok {
		metrics.RecordCacheLookup(true)
		result := cached.(Result)
		metrics.RecordRouteQuery(snap.NetworkID, outcome(result), result.Route)
		return result, nil
	}
	metrics.RecordCacheLookup(false)

	r, found, err := snap.Graph.FindPath(start, end)
	if err != nil {
		metrics.RecordRouteQuery(snap.NetworkID, metrics.OutcomeError, models.Route{})
		s.Logger.Error("Route search failed", "network_id", snap.NetworkID, "from", start.ID, "to", end.ID, "error", err)
		return Result{}, err
	}

	result := Result{
		NetworkID:  snap.NetworkID,
		From:       start,
		To:         end,
		Found:      found,
		SnapshotAt: snap.FetchedAt,
	}
	if found {
		result.Route = r
		result.Hops = r.Hops()
		result.DistanceMeters = r.Distance
		result.DistanceKm = r.Kilometers()
	}
	s.Cache.Set(key, result, cache.DefaultExpiration)
	metrics.RecordRouteQuery(snap.NetworkID, outcome(result), result.Route)
	return result, nil
}

// resolveStation matches value against station names first and falls back
// to station ids.
func resolveStation(g *route.Graph, value string) (models.Station, error) {
	if st, ok := g.StationByName(value); ok {
		return st, nil
	}
	if st, ok := g.Station(value); ok {
		return st, nil
	}
	return models.Station{}, fmt.Errorf("%q: %w", value, ErrStationNotFound)
}

func cacheKey(snap *stations.Snapshot, startID, endID string) string {
	return fmt.Sprintf("%d:%d:%s:%s", snap.NetworkID, snap.Version, startID, endID)
}

func outcome(result Result) string {
	if result.Found {
		return metrics.OutcomeFound
	}
	return metrics.OutcomeNoRoute
}

// Nearest returns the station closest to the given location and its
// distance in meters. The location must lie within ServiceAreaMargin of the
// network's station bounding box. Stations without usable coordinates are
// ignored.
func (s *Service) Nearest(ctx context.Context, networkID int, lat, lon float64) (models.Station, float64, error) {
	if !geo.IsValidLatLon(lat, lon) {
		return models.Station{}, 0, fmt.Errorf("(%v, %v): %w", lat, lon, ErrInvalidLocation)
	}
	_, snap, err := s.snapshot(ctx, networkID)
	if err != nil {
		return models.Station{}, 0, err
	}
	if !s.BoundingBoxes.IsWithinMargin(networkID, lat, lon, s.ServiceAreaMargin) {
		return models.Station{}, 0, fmt.Errorf("network %d: %w", networkID, ErrOutsideServiceArea)
	}

	var nearest models.Station
	best := math.Inf(1)
	for _, st := range snap.Stations() {
		if !geo.IsValidLatLon(st.Latitude, st.Longitude) {
			continue
		}
		d := geo.HaversineDistance(lat, lon, st.Latitude, st.Longitude)
		if d < best {
			nearest, best = st, d
		}
	}
	if math.IsInf(best, 1) {
		return models.Station{}, 0, fmt.Errorf("network %d: %w", networkID, ErrStationNotFound)
	}
	return nearest, best, nil
}
