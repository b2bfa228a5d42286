package whazzup

import "time"

// Feed is the root object returned by the datafeed snapshot endpoint.
// Every successful fetch replaces the previous feed wholesale; there is no
// incremental update and no stable identity across cycles beyond callsigns
// and numeric ids happening to match.
type Feed struct {
	General  General   `json:"general"`
	Stations []Station `json:"controllers"`
	Pilots   []Pilot   `json:"pilots"`
}

// General carries feed-level metadata.
type General struct {
	Version          int       `json:"version"`
	UpdateTimestamp  time.Time `json:"update_timestamp"`
	ConnectedClients int       `json:"connected_clients"`
}

// Category is the operational position type of a station.
// The numeric values match the facility codes used on the wire.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryFSS              // flight service station
	CategoryDelivery
	CategoryGround
	CategoryTower
	CategoryApproach
	CategoryCenter
)

// String returns the conventional two/three-letter position suffix.
func (c Category) String() string {
	switch c {
	case CategoryFSS:
		return "FSS"
	case CategoryDelivery:
		return "DEL"
	case CategoryGround:
		return "GND"
	case CategoryTower:
		return "TWR"
	case CategoryApproach:
		return "APP"
	case CategoryCenter:
		return "CTR"
	default:
		return "UNK"
	}
}

// IsAreaControl reports whether the category controls a geographic region
// (counted by polygon containment) rather than an airport (counted by
// flight-plan prefix matching).
func (c Category) IsAreaControl() bool {
	return c == CategoryCenter || c == CategoryFSS
}

// Station is an active ATC position, e.g. "LTBA_TWR".
type Station struct {
	ID             int     `json:"id"`
	Callsign       string  `json:"callsign"`
	Facility       int     `json:"facility"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	SessionSeconds int     `json:"session_seconds"`
	Atis           string  `json:"atis,omitempty"`
}

// Category maps the station's wire facility code to a Category. Codes
// outside the known range come back as CategoryUnknown; those stations
// still appear in aggregation output with zero counts.
func (s Station) Category() Category {
	if s.Facility < int(CategoryFSS) || s.Facility > int(CategoryCenter) {
		return CategoryUnknown
	}
	return Category(s.Facility)
}

// Pilot is a tracked flight. Both the flight plan and the last known
// position are optional; either may be nil on any given cycle.
type Pilot struct {
	ID         int         `json:"id"`
	Callsign   string      `json:"callsign"`
	FlightPlan *FlightPlan `json:"flight_plan,omitempty"`
	Position   *Position   `json:"position,omitempty"`
}

// FlightPlan is a pilot's filed plan. Departure and Arrival are ICAO
// airport identifiers.
type FlightPlan struct {
	Departure      string `json:"departure"`
	Arrival        string `json:"arrival"`
	Route          string `json:"route"`
	CruiseSpeed    string `json:"cruise_tas"`
	Level          string `json:"altitude"`
	EnrouteSeconds int    `json:"enroute_seconds"`
}

// Position is a pilot's last known position report.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Heading   int     `json:"heading"`
	Altitude  int     `json:"altitude"`
}

// CoverageRecord describes the coverage geometry published for a station
// callsign by the summary endpoint. Area positions carry a polygon in
// Polygon or, for centers that delegate to a subsector boundary, in
// SubcenterPolygon. Airport positions carry neither; their shape is a
// fixed radius around the station's own position.
//
// Vertices are [lat, lng] pairs.
type CoverageRecord struct {
	Callsign         string       `json:"callsign"`
	Facility         int          `json:"facility"`
	Polygon          [][2]float64 `json:"polygon,omitempty"`
	SubcenterPolygon [][2]float64 `json:"subcenter_polygon,omitempty"`
}
