// Package server exposes the current snapshot over a read-only HTTP API:
// station and pilot listings, per-station detail with coverage geometry,
// and a manual refresh trigger. It only ever reads published snapshots;
// no handler waits on a refresh cycle.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tkoksal/atcmap/internal/airports"
	"github.com/tkoksal/atcmap/internal/refresh"
	"github.com/tkoksal/atcmap/pkg/coverage"
	"github.com/tkoksal/atcmap/pkg/geo"
	"github.com/tkoksal/atcmap/pkg/traffic"
	"github.com/tkoksal/atcmap/pkg/whazzup"
)

// Server holds the router and its dependencies.
type Server struct {
	router   *chi.Mux
	coord    *refresh.Coordinator
	airports airports.Source
	log      *slog.Logger
}

// SnapshotMeta summarizes the published snapshot.
type SnapshotMeta struct {
	FetchedAt time.Time `json:"fetched_at"`
	Stations  int       `json:"stations"`
	Pilots    int       `json:"pilots"`
	Coverage  int       `json:"coverage_records"`
}

// StationView is the list/detail representation of a station.
type StationView struct {
	ID             int           `json:"id"`
	Callsign       string        `json:"callsign"`
	Category       string        `json:"category"`
	Latitude       float64       `json:"latitude"`
	Longitude      float64       `json:"longitude"`
	SessionSeconds int           `json:"session_seconds"`
	Atis           string        `json:"atis,omitempty"`
	Country        string        `json:"country,omitempty"`
	Count          traffic.Count `json:"count"`

	// Geometry is only attached on the detail endpoint; the listing stays
	// lean for 2-second TUI polling.
	GeometryKind string      `json:"geometry_kind,omitempty"`
	Ring         []geo.Point `json:"ring,omitempty"`
}

// PilotView is the list representation of a pilot.
type PilotView struct {
	ID       int                 `json:"id"`
	Callsign string              `json:"callsign"`
	Plan     *whazzup.FlightPlan `json:"flight_plan,omitempty"`
	Position *whazzup.Position   `json:"position,omitempty"`
}

// New builds the server and its routes. airportSource may be nil; the
// airports endpoint then answers 404 for every identifier.
func New(coord *refresh.Coordinator, airportSource airports.Source, allowedOrigins []string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router:   chi.NewRouter(),
		coord:    coord,
		airports: airportSource,
		log:      log,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/stations", s.handleStations)
		r.Get("/stations/{callsign}", s.handleStationDetail)
		r.Get("/pilots", s.handlePilots)
		r.Get("/airports/{ident}", s.handleAirport)
		r.Post("/refresh", s.handleRefresh)
	})

	return s
}

// Router returns the http.Handler to serve.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Current()
	writeJSON(w, http.StatusOK, SnapshotMeta{
		FetchedAt: snap.FetchedAt,
		Stations:  len(snap.Stations),
		Pilots:    len(snap.Pilots),
		Coverage:  len(snap.Coverage),
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Current()
	views := make([]StationView, 0, len(snap.Stations))
	for _, st := range snap.Stations {
		views = append(views, stationView(snap, st, false))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleStationDetail(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	snap := s.coord.Current()
	for _, st := range snap.Stations {
		if st.Callsign == callsign {
			writeJSON(w, http.StatusOK, stationView(snap, st, true))
			return
		}
	}
	http.Error(w, "station not found", http.StatusNotFound)
}

func (s *Server) handlePilots(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Current()
	views := make([]PilotView, 0, len(snap.Pilots))
	for _, p := range snap.Pilots {
		views = append(views, PilotView{
			ID:       p.ID,
			Callsign: p.Callsign,
			Plan:     p.FlightPlan,
			Position: p.Position,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAirport is the coordinate lookup used by route visualization: a
// miss is 404, not an error condition.
func (s *Server) handleAirport(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "ident")
	if s.airports == nil {
		http.Error(w, "airport lookup not configured", http.StatusNotFound)
		return
	}
	p, ok, err := s.airports.Coordinates(r.Context(), ident)
	if err != nil {
		s.log.Warn("airport lookup failed", "ident", ident, "error", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "airport not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.coord.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func stationView(snap *refresh.Snapshot, st whazzup.Station, detail bool) StationView {
	v := StationView{
		ID:             st.ID,
		Callsign:       st.Callsign,
		Category:       st.Category().String(),
		Latitude:       st.Latitude,
		Longitude:      geo.NormalizeLongitude(st.Longitude),
		SessionSeconds: st.SessionSeconds,
		Atis:           st.Atis,
		Country:        countryFor(snap.Countries, st.Callsign),
		Count:          snap.Counts[st.Callsign],
	}
	if detail {
		g := coverage.Resolve(st, snap.Coverage)
		v.GeometryKind = kindName(g.Kind)
		v.Ring = coverage.RenderRing(st, g)
	}
	return v
}

// countryFor matches the callsign's ICAO country prefix, longest first:
// two-letter prefixes like ED/LT, then single letters like K.
func countryFor(countries map[string]string, callsign string) string {
	for _, n := range []int{2, 1} {
		if len(callsign) < n {
			continue
		}
		if name, ok := countries[callsign[:n]]; ok {
			return name
		}
	}
	return ""
}

func kindName(k coverage.Kind) string {
	switch k {
	case coverage.KindFixedShape:
		return "fixed"
	case coverage.KindPolygon:
		return "polygon"
	default:
		return "none"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
