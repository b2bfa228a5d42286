// Package coverage resolves the geometry a station covers. Area positions
// (centers, flight service stations, approach) publish polygons through
// the coverage-summary endpoint; airport positions (tower, ground,
// delivery) use a fixed-radius shape centered on the station itself.
//
// The resolved Geometry is a tagged variant so callers branch once on
// Kind instead of probing optional polygon fields at every use site.
package coverage

import (
	"github.com/tkoksal/atcmap/pkg/geo"
	"github.com/tkoksal/atcmap/pkg/whazzup"
)

// Kind discriminates the geometry variants.
type Kind int

const (
	// KindNone means the station has no usable geometry this cycle. It is
	// excluded from area rendering and region-based aggregation.
	KindNone Kind = iota

	// KindFixedShape is a radius-based shape centered on the station.
	KindFixedShape

	// KindPolygon is an explicit vertex ring from a coverage record.
	KindPolygon
)

// Shape selects the rendered outline for fixed-radius geometry.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeStar
)

// FixedRadiusKm is the coverage radius used for all airport-bound
// positions (tower, ground, delivery).
const FixedRadiusKm = 9.3

// Ring tessellation for rendering fixed shapes.
const (
	circleSegments = 36
	starPoints     = 4
)

// Geometry is the resolved coverage of one station for one cycle.
type Geometry struct {
	Kind Kind

	// Shape, RadiusKm and RotationDeg are set for KindFixedShape.
	Shape       Shape
	RadiusKm    float64
	RotationDeg float64

	// Ring holds the polygon vertices for KindPolygon, with longitudes
	// normalized into [-180, 180].
	Ring []geo.Point
}

// Resolve maps a station to its coverage geometry.
//
// The category always comes from the live station record, never from the
// coverage record: the two endpoints are fetched independently and the
// operational category can change between cycles, so the station's own
// classification is the fresher one. Matching is by exact callsign; when
// several records share a callsign the first one wins.
func Resolve(st whazzup.Station, records []whazzup.CoverageRecord) Geometry {
	switch st.Category() {
	case whazzup.CategoryTower:
		return Geometry{Kind: KindFixedShape, Shape: ShapeCircle, RadiusKm: FixedRadiusKm}
	case whazzup.CategoryGround:
		return Geometry{Kind: KindFixedShape, Shape: ShapeStar, RadiusKm: FixedRadiusKm, RotationDeg: 0}
	case whazzup.CategoryDelivery:
		return Geometry{Kind: KindFixedShape, Shape: ShapeStar, RadiusKm: FixedRadiusKm, RotationDeg: 45}
	case whazzup.CategoryApproach:
		rec, ok := findRecord(st.Callsign, records)
		if !ok {
			return Geometry{}
		}
		return polygonGeometry(rec.Polygon)
	case whazzup.CategoryCenter, whazzup.CategoryFSS:
		rec, ok := findRecord(st.Callsign, records)
		if !ok {
			return Geometry{}
		}
		// Centers may delegate to a subsector boundary; fall back to the
		// record's own polygon when none is published.
		if len(rec.SubcenterPolygon) > 0 {
			return polygonGeometry(rec.SubcenterPolygon)
		}
		return polygonGeometry(rec.Polygon)
	default:
		return Geometry{}
	}
}

// RenderRing returns the concrete vertex ring to draw for a station's
// geometry: the polygon itself, or the tessellated circle/star centered on
// the station's last position. KindNone yields nil.
func RenderRing(st whazzup.Station, g Geometry) []geo.Point {
	switch g.Kind {
	case KindPolygon:
		return g.Ring
	case KindFixedShape:
		center := geo.Point{Lat: st.Latitude, Lng: geo.NormalizeLongitude(st.Longitude)}
		radiusM := g.RadiusKm * 1000
		if g.Shape == ShapeStar {
			return geo.StarRing(center, radiusM, starPoints, g.RotationDeg)
		}
		return geo.CircleRing(center, radiusM, circleSegments)
	default:
		return nil
	}
}

func findRecord(callsign string, records []whazzup.CoverageRecord) (whazzup.CoverageRecord, bool) {
	for _, rec := range records {
		if rec.Callsign == callsign {
			return rec, true
		}
	}
	return whazzup.CoverageRecord{}, false
}

func polygonGeometry(vertices [][2]float64) Geometry {
	if len(vertices) < 3 {
		return Geometry{}
	}
	ring := make([]geo.Point, len(vertices))
	for i, v := range vertices {
		ring[i] = geo.Point{Lat: v[0], Lng: geo.NormalizeLongitude(v[1])}
	}
	return Geometry{Kind: KindPolygon, Ring: ring}
}
