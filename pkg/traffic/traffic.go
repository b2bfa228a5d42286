// Package traffic computes per-station traffic counts from one atomic
// snapshot of stations, pilots and coverage records. The computation is a
// pure function of its inputs: no state crosses refresh cycles, counts
// are never smoothed or averaged.
package traffic

import (
	"github.com/tkoksal/atcmap/pkg/coverage"
	"github.com/tkoksal/atcmap/pkg/geo"
	"github.com/tkoksal/atcmap/pkg/whazzup"
)

// prefixLen is the number of leading callsign characters that identify a
// station's airport. Matching is exact over this length: airports with
// shorter codes, and stations whose callsign encodes a different scope,
// simply never match. That exclusion is deliberate.
const prefixLen = 4

// Count is the traffic derived for one station in one cycle. Exactly one
// of the two modes is meaningful per station: area-control positions
// (center, FSS) report InRegion, every other position reports
// Inbound/Outbound. The unused mode is always zero.
type Count struct {
	Inbound  int `json:"inbound"`
	Outbound int `json:"outbound"`
	InRegion int `json:"in_region"`
}

// Total is the station's headline number regardless of mode.
func (c Count) Total() int {
	if c.InRegion > 0 {
		return c.InRegion
	}
	return c.Inbound + c.Outbound
}

// Compute returns a Count for every station in stations, keyed by
// callsign. The result always covers the full station list; stations
// without geometry or matching flights get a zero Count rather than being
// omitted.
//
// Area stations count pilots whose last known position lies inside the
// station's resolved polygon. All other stations count pilots whose filed
// departure (outbound) or arrival (inbound) matches the station's
// four-character airport prefix. Pilots without a flight plan never enter
// prefix counting; pilots without a position never enter region counting.
func Compute(stations []whazzup.Station, pilots []whazzup.Pilot, records []whazzup.CoverageRecord) map[string]Count {
	counts := make(map[string]Count, len(stations))

	// Pre-bucket filed prefixes so the prefix pass is a map lookup per
	// station instead of a scan over all pilots.
	departures := make(map[string]int)
	arrivals := make(map[string]int)
	for _, p := range pilots {
		fp := p.FlightPlan
		if fp == nil {
			continue
		}
		if len(fp.Departure) >= prefixLen {
			departures[fp.Departure[:prefixLen]]++
		}
		if len(fp.Arrival) >= prefixLen {
			arrivals[fp.Arrival[:prefixLen]]++
		}
	}

	for _, st := range stations {
		var c Count
		if st.Category().IsAreaControl() {
			g := coverage.Resolve(st, records)
			if g.Kind == coverage.KindPolygon {
				for _, p := range pilots {
					if p.Position == nil {
						continue
					}
					pt := geo.Point{
						Lat: p.Position.Latitude,
						Lng: geo.NormalizeLongitude(p.Position.Longitude),
					}
					if geo.PointInPolygon(pt, g.Ring) {
						c.InRegion++
					}
				}
			}
		} else if len(st.Callsign) >= prefixLen {
			prefix := st.Callsign[:prefixLen]
			c.Outbound = departures[prefix]
			c.Inbound = arrivals[prefix]
		}
		counts[st.Callsign] = c
	}
	return counts
}
