package stations

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// setupStaticServer serves data with the given content type on every path.
func setupStaticServer(t *testing.T, contentType string, data []byte) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func readFixture(t *testing.T, fixturePath string) []byte {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("..", "..", "testdata", fixturePath))
	if err != nil {
		t.Fatalf("Failed to get absolute path to testdata/%s: %v", fixturePath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		t.Fatalf("Failed to read fixture file: %v", err)
	}

	return data
}

// buildGTFSZip zips the given GTFS text files into a static bundle.
func buildGTFSZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s to GTFS bundle: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s to GTFS bundle: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close GTFS bundle: %v", err)
	}
	return buf.Bytes()
}

// lineGTFSFiles describes a three station line. Station P1 has two
// platforms, S4 is never served by a trip.
func lineGTFSFiles() map[string]string {
	return map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"MRT,Metro Rail Transit,https://example.com,Asia/Manila\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"L1,MRT,L1,Line 1,1\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WK,1,1,1,1,1,1,1,20250101,20351231\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
			"P1,North Avenue,14.6522,121.0323,1,\n" +
			"P1a,North Avenue Platform A,14.6521,121.0322,0,P1\n" +
			"P1b,North Avenue Platform B,14.6523,121.0324,0,P1\n" +
			"S2,Quezon Avenue,14.6427,121.0387,0,\n" +
			"S3,GMA Kamuning,14.6352,121.0433,0,\n" +
			"S4,Depot,14.6600,121.0300,0,\n",
		"trips.txt": "route_id,service_id,trip_id,direction_id\n" +
			"L1,WK,T1,0\n" +
			"L1,WK,T2,1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:04:00,08:04:30,S3,3\n" +
			"T1,08:00:00,08:00:30,P1a,1\n" +
			"T1,08:02:00,08:02:30,S2,2\n" +
			"T2,09:00:00,09:00:30,S3,1\n" +
			"T2,09:02:00,09:02:30,S2,2\n" +
			"T2,09:04:00,09:04:30,P1b,3\n",
	}
}
