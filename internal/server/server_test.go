package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tkoksal/atcmap/internal/airports"
	"github.com/tkoksal/atcmap/internal/refresh"
	"github.com/tkoksal/atcmap/pkg/geo"
	"github.com/tkoksal/atcmap/pkg/whazzup"
)

type stubFetcher struct {
	feed *whazzup.Feed
	recs []whazzup.CoverageRecord
}

func (s *stubFetcher) FetchFeed(ctx context.Context) (*whazzup.Feed, error) {
	return s.feed, nil
}

func (s *stubFetcher) FetchCoverage(ctx context.Context) ([]whazzup.CoverageRecord, error) {
	return s.recs, nil
}

func testServer(t *testing.T) (*httptest.Server, *refresh.Coordinator) {
	t.Helper()
	fetcher := &stubFetcher{
		feed: &whazzup.Feed{
			Stations: []whazzup.Station{
				{ID: 1, Callsign: "EDDF_TWR", Facility: int(whazzup.CategoryTower), Latitude: 50.03, Longitude: 8.57},
				{ID: 2, Callsign: "EDGG_CTR", Facility: int(whazzup.CategoryCenter), Latitude: 50.0, Longitude: 8.0},
			},
			Pilots: []whazzup.Pilot{
				{
					ID: 7, Callsign: "DLH400",
					FlightPlan: &whazzup.FlightPlan{Departure: "EDDF", Arrival: "KJFK"},
					Position:   &whazzup.Position{Latitude: 50.1, Longitude: 8.2, Altitude: 12000},
				},
			},
		},
		recs: []whazzup.CoverageRecord{
			{Callsign: "EDGG_CTR", Facility: 6, Polygon: [][2]float64{{49, 7}, {49, 10}, {51, 10}, {51, 7}}},
		},
	}
	coord := refresh.New(fetcher, "", time.Hour, nil)
	coord.RunOnce(context.Background())

	srv := New(coord, staticAirports(t), []string{"*"}, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, coord
}

func staticAirports(t *testing.T) airports.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airports.csv")
	if err := os.WriteFile(path, []byte("LTBA,40.9769,28.8146\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := airports.LoadStatic(path)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := testServer(t)
	var body map[string]string
	resp := getJSON(t, ts.URL+"/healthz", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz: status %d body %v", resp.StatusCode, body)
	}
}

func TestSnapshotMeta(t *testing.T) {
	ts, _ := testServer(t)
	var meta SnapshotMeta
	getJSON(t, ts.URL+"/api/v1/snapshot", &meta)
	if meta.Stations != 2 || meta.Pilots != 1 || meta.Coverage != 1 {
		t.Errorf("meta = %+v, want 2 stations / 1 pilot / 1 coverage", meta)
	}
	if meta.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestStations(t *testing.T) {
	ts, _ := testServer(t)
	var views []StationView
	getJSON(t, ts.URL+"/api/v1/stations", &views)
	if len(views) != 2 {
		t.Fatalf("got %d stations, want 2", len(views))
	}

	byCallsign := map[string]StationView{}
	for _, v := range views {
		byCallsign[v.Callsign] = v
	}

	twr := byCallsign["EDDF_TWR"]
	if twr.Category != "TWR" || twr.Count.Outbound != 1 {
		t.Errorf("EDDF_TWR view = %+v, want category TWR, outbound 1", twr)
	}
	ctr := byCallsign["EDGG_CTR"]
	if ctr.Count.InRegion != 1 {
		t.Errorf("EDGG_CTR view = %+v, want in-region 1", ctr)
	}
	// Listing carries no geometry.
	if twr.Ring != nil || twr.GeometryKind != "" {
		t.Errorf("listing should omit geometry, got %+v", twr)
	}
}

func TestStationDetail(t *testing.T) {
	ts, _ := testServer(t)

	var v StationView
	getJSON(t, ts.URL+"/api/v1/stations/EDGG_CTR", &v)
	if v.GeometryKind != "polygon" || len(v.Ring) != 4 {
		t.Errorf("detail = %+v, want polygon with 4 vertices", v)
	}

	var twr StationView
	getJSON(t, ts.URL+"/api/v1/stations/EDDF_TWR", &twr)
	if twr.GeometryKind != "fixed" || len(twr.Ring) == 0 {
		t.Errorf("tower detail = %+v, want fixed shape with ring", twr)
	}

	resp := getJSON(t, ts.URL+"/api/v1/stations/NOPE_CTR", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown station: status %d, want 404", resp.StatusCode)
	}
}

func TestPilots(t *testing.T) {
	ts, _ := testServer(t)
	var views []PilotView
	getJSON(t, ts.URL+"/api/v1/pilots", &views)
	if len(views) != 1 {
		t.Fatalf("got %d pilots, want 1", len(views))
	}
	if views[0].Callsign != "DLH400" || views[0].Plan == nil || views[0].Plan.Departure != "EDDF" {
		t.Errorf("pilot view = %+v", views[0])
	}
}

func TestAirportLookup(t *testing.T) {
	ts, _ := testServer(t)

	var p geo.Point
	resp := getJSON(t, ts.URL+"/api/v1/airports/LTBA", &p)
	if resp.StatusCode != http.StatusOK || p.Lat != 40.9769 {
		t.Errorf("LTBA lookup: status %d point %+v", resp.StatusCode, p)
	}

	resp = getJSON(t, ts.URL+"/api/v1/airports/XXXX", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown airport: status %d, want 404", resp.StatusCode)
	}
}

func TestManualRefresh(t *testing.T) {
	ts, _ := testServer(t)
	resp, err := http.Post(ts.URL+"/api/v1/refresh", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("refresh: status %d, want 202", resp.StatusCode)
	}
}
