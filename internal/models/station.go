package models

import (
	"encoding/json"
	"math"
)

// Station is one physical stop of a rail network.
//
// Connections lists the ids of the stations this station has a direct rail
// link to. Links are stored directionally; a bidirectional link needs both
// stations to list each other.
type Station struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Connections []string `json:"connections"`
}

// stationRecord is the wire shape served by the station management service.
// The service keys records by "_id"; "id" is accepted as well.
type stationRecord struct {
	MongoID     string   `json:"_id"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Connections []string `json:"connections"`
}

// UnmarshalJSON decodes a station record. Missing coordinates decode to NaN
// so that consumers can reject the record instead of routing through (0,0).
func (s *Station) UnmarshalJSON(b []byte) error {
	var rec stationRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}

	s.ID = rec.MongoID
	if s.ID == "" {
		s.ID = rec.ID
	}
	s.Name = rec.Name
	s.Latitude = math.NaN()
	if rec.Latitude != nil {
		s.Latitude = *rec.Latitude
	}
	s.Longitude = math.NaN()
	if rec.Longitude != nil {
		s.Longitude = *rec.Longitude
	}
	s.Connections = rec.Connections
	return nil
}

// MarshalJSON encodes the station, writing unusable coordinates as null.
func (s Station) MarshalJSON() ([]byte, error) {
	out := struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		Connections []string `json:"connections"`
	}{
		ID:          s.ID,
		Name:        s.Name,
		Latitude:    finiteOrNil(s.Latitude),
		Longitude:   finiteOrNil(s.Longitude),
		Connections: s.Connections,
	}
	if out.Connections == nil {
		out.Connections = []string{}
	}
	return json.Marshal(out)
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
