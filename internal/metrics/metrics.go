package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RouteQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farecalc_route_queries_total",
		Help: "Number of route queries by outcome (found, no_route, station_not_found, error)",
	}, []string{"network_id", "outcome"})

	RouteDistance = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farecalc_route_distance_meters",
		Help:    "Distance of found routes in meters",
		Buckets: prometheus.ExponentialBuckets(500, 2, 10),
	}, []string{"network_id"})

	RouteHops = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farecalc_route_hops",
		Help:    "Number of rail links travelled by found routes",
		Buckets: prometheus.LinearBuckets(0, 2, 16),
	}, []string{"network_id"})

	RouteCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farecalc_route_cache_requests_total",
		Help: "Route cache lookups (hit, miss)",
	}, []string{"result"})
)

var (
	SnapshotStations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "farecalc_snapshot_stations",
		Help: "Number of stations in the current snapshot of a network",
	}, []string{"network_id"})

	SnapshotLoadStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "farecalc_snapshot_load_status",
		Help: "Status of the last station snapshot load (0 = failed, 1 = succeeded)",
	}, []string{"network_id"})

	SnapshotLastLoaded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "farecalc_snapshot_last_loaded_timestamp_seconds",
		Help: "Unix time of the last successful station snapshot load",
	}, []string{"network_id"})

	SnapshotAge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "farecalc_snapshot_age_seconds",
		Help: "Seconds since the current station snapshot of a network was fetched",
	}, []string{"network_id"})

	DanglingConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "farecalc_snapshot_dangling_connections",
		Help: "Number of connection ids in the current snapshot that do not resolve to a station",
	}, []string{"network_id"})
)

var (
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farecalc_outgoing_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests to station and config services",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})
)
