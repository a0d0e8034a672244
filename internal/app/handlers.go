package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/migodlcrz/mrt-system-sub000/internal/fare"
	"github.com/migodlcrz/mrt-system-sub000/internal/geo"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

// HealthStatus is the body of /v1/healthcheck. The service is ready once
// the stations of at least one network are loaded.
type HealthStatus struct {
	Status         string `json:"status"`
	Environment    string `json:"environment"`
	Version        string `json:"version"`
	Networks       int    `json:"networks"`
	LoadedNetworks int    `json:"loaded_networks"`
	Ready          bool   `json:"ready"`
}

func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	numNetworks := len(app.ConfigService.Config.GetNetworks())
	loaded := app.StationsService.Store.Len()
	ready := numNetworks > 0 && loaded > 0

	status := HealthStatus{
		Status:         "available",
		Environment:    app.ConfigService.Config.Env,
		Version:        app.Version,
		Networks:       numNetworks,
		LoadedNetworks: loaded,
		Ready:          ready,
	}

	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusInternalServerError
	}
	app.writeJSON(w, httpStatus, status)
}

type stationsResponse struct {
	NetworkID    int              `json:"network_id"`
	Name         string           `json:"name"`
	Version      uint64           `json:"version"`
	FetchedAt    time.Time        `json:"fetched_at"`
	BoundingBox  *geo.BoundingBox `json:"bounding_box,omitempty"`
	StationCount int              `json:"station_count"`
	Stations     []models.Station `json:"stations"`
}

func (app *Application) stationsHandler(w http.ResponseWriter, r *http.Request) {
	networkID, err := readNetworkID(r)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}
	network, ok := app.ConfigService.Config.GetNetwork(networkID)
	if !ok {
		app.serviceErrorResponse(w, r, fare.ErrNetworkNotFound)
		return
	}

	snap, err := app.StationsService.Snapshot(r.Context(), network)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	resp := stationsResponse{
		NetworkID:    network.ID,
		Name:         network.Name,
		Version:      snap.Version,
		FetchedAt:    snap.FetchedAt,
		StationCount: snap.Graph.Len(),
		Stations:     snap.Stations(),
	}
	if bbox, ok := app.StationsService.BoundingBoxStore.Get(network.ID); ok {
		resp.BoundingBox = &bbox
	}
	app.writeJSON(w, http.StatusOK, resp)
}

func (app *Application) routeHandler(w http.ResponseWriter, r *http.Request) {
	networkID, err := readNetworkID(r)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	from, to := query.Get("from"), query.Get("to")
	if from == "" || to == "" {
		app.errorResponse(w, http.StatusBadRequest, "both from and to query parameters are required")
		return
	}

	result, err := app.FareService.Query(r.Context(), networkID, from, to)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, result)
}

func (app *Application) scanHandler(w http.ResponseWriter, r *http.Request) {
	networkID, err := readNetworkID(r)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}
	scanned := httprouter.ParamsFromContext(r.Context()).ByName("station")

	result, err := app.FareService.Scan(r.Context(), networkID, scanned, r.URL.Query().Get("origin"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, result)
}

type nearestResponse struct {
	NetworkID      int            `json:"network_id"`
	Station        models.Station `json:"station"`
	DistanceMeters float64        `json:"distance_m"`
}

func (app *Application) nearestHandler(w http.ResponseWriter, r *http.Request) {
	networkID, err := readNetworkID(r)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	lat, latErr := strconv.ParseFloat(query.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(query.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		app.errorResponse(w, http.StatusBadRequest, "lat and lon query parameters must be numbers")
		return
	}

	station, distance, err := app.FareService.Nearest(r.Context(), networkID, lat, lon)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, nearestResponse{
		NetworkID:      networkID,
		Station:        station,
		DistanceMeters: distance,
	})
}
