package models

// Network describes one rail network whose station data the service loads.
//
// A network gets its stations either from a station management service
// (StationsURL, a JSON array of station records) or from a GTFS static
// bundle (GtfsURL). When both are set the station service wins.
type Network struct {
	Name                 string `json:"name"`
	ID                   int    `json:"id"`
	StationsURL          string `json:"stations_url"`
	StationsAPIKeyHeader string `json:"stations_api_key_header"`
	StationsAPIKey       string `json:"stations_api_key"`
	GtfsURL              string `json:"gtfs_url"`
	// ReferenceStation is the default tap-in station (name or id) used by the
	// scan flow when a request does not carry an origin.
	ReferenceStation string `json:"reference_station"`
}

// NewNetwork creates a new Network instance with the provided parameters.
func NewNetwork(name string, id int, stationsURL, apiKeyHeader, apiKey, gtfsURL, referenceStation string) *Network {
	return &Network{
		Name:                 name,
		ID:                   id,
		StationsURL:          stationsURL,
		StationsAPIKeyHeader: apiKeyHeader,
		StationsAPIKey:       apiKey,
		GtfsURL:              gtfsURL,
		ReferenceStation:     referenceStation,
	}
}

// SourceURL returns the URL the network's stations are loaded from.
func (n Network) SourceURL() string {
	if n.StationsURL != "" {
		return n.StationsURL
	}
	return n.GtfsURL
}
