package stations

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"

	remoteGtfs "github.com/jamespfennell/gtfs"
	"github.com/migodlcrz/mrt-system-sub000/internal/config"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

// downloadGTFSStations downloads a GTFS static bundle and derives the
// network's stations from it.
func downloadGTFSStations(ctx context.Context, client *http.Client, url string, maxRetries int) ([]models.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := config.DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status %d when downloading GTFS bundle from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS bundle response body from %s: %w", url, err)
	}

	static, err := remoteGtfs.ParseStatic(data, remoteGtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse GTFS static data from %s: %w", url, err)
	}
	return StationsFromGTFS(static), nil
}

// StationsFromGTFS builds a station collection from a GTFS static bundle.
//
// Platforms and other child stops are folded into their parent station
// (location_type 1), so a station with several platforms becomes one graph
// node. Only stops served by at least one trip become stations. Two stations
// are connected when they are consecutive stops of any trip; the link is added
// in both directions. Connections keep the order in which trips first link
// the stations.
func StationsFromGTFS(static *remoteGtfs.Static) []models.Station {
	connections := make(map[string][]string)
	linked := make(map[[2]string]bool)
	served := make(map[string]bool)

	addLink := func(from, to string) {
		key := [2]string{from, to}
		if linked[key] {
			return
		}
		linked[key] = true
		connections[from] = append(connections[from], to)
	}

	for _, trip := range static.Trips {
		stopTimes := append([]remoteGtfs.ScheduledStopTime(nil), trip.StopTimes...)
		sort.SliceStable(stopTimes, func(i, j int) bool {
			return stopTimes[i].StopSequence < stopTimes[j].StopSequence
		})

		previous := ""
		for _, st := range stopTimes {
			if st.Stop == nil {
				continue
			}
			current := rootStationID(st.Stop)
			served[current] = true
			if previous != "" && previous != current {
				addLink(previous, current)
				addLink(current, previous)
			}
			previous = current
		}
	}

	var result []models.Station
	for i := range static.Stops {
		stop := &static.Stops[i]
		if !served[stop.Id] || rootStationID(stop) != stop.Id {
			continue
		}
		result = append(result, models.Station{
			ID:          stop.Id,
			Name:        stop.Name,
			Latitude:    coordinate(stop.Latitude),
			Longitude:   coordinate(stop.Longitude),
			Connections: connections[stop.Id],
		})
	}
	return result
}

// rootStationID returns the id of the station a stop belongs to, following
// the GTFS parent_station hierarchy. Stops without a parent station are
// their own station.
// https://gtfs.org/schedule/reference/#stopstxt
func rootStationID(stop *remoteGtfs.Stop) string {
	root := stop
	for root.Parent != nil {
		root = root.Parent
	}
	if root != stop && root.Type == 1 { // location_type 1: station
		return root.Id
	}
	return stop.Id
}

func coordinate(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
