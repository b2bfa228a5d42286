package coverage

import (
	"testing"

	"github.com/tkoksal/atcmap/pkg/whazzup"
)

func station(callsign string, category whazzup.Category) whazzup.Station {
	return whazzup.Station{
		Callsign:  callsign,
		Facility:  int(category),
		Latitude:  41.0,
		Longitude: 29.0,
	}
}

func TestResolveFixedShapes(t *testing.T) {
	cases := []struct {
		name     string
		category whazzup.Category
		shape    Shape
		rotation float64
	}{
		{"Tower circle", whazzup.CategoryTower, ShapeCircle, 0},
		{"Ground star", whazzup.CategoryGround, ShapeStar, 0},
		{"Delivery rotated star", whazzup.CategoryDelivery, ShapeStar, 45},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// No coverage record needed: fixed shapes come from the
			// station's own position and category alone.
			g := Resolve(station("LTBA_XXX", tc.category), nil)
			if g.Kind != KindFixedShape {
				t.Fatalf("Kind = %v, want KindFixedShape", g.Kind)
			}
			if g.Shape != tc.shape || g.RotationDeg != tc.rotation {
				t.Errorf("shape/rotation = %v/%v, want %v/%v", g.Shape, g.RotationDeg, tc.shape, tc.rotation)
			}
			if g.RadiusKm != FixedRadiusKm {
				t.Errorf("RadiusKm = %v, want %v", g.RadiusKm, FixedRadiusKm)
			}
		})
	}
}

func TestResolvePolygons(t *testing.T) {
	records := []whazzup.CoverageRecord{
		{
			Callsign: "EDDF_APP",
			Polygon:  [][2]float64{{49, 8}, {49, 9}, {50, 9}},
		},
		{
			Callsign:         "EDGG_CTR",
			Polygon:          [][2]float64{{49, 6}, {49, 10}, {52, 10}},
			SubcenterPolygon: [][2]float64{{50, 7}, {50, 9}, {51, 9}, {51, 7}},
		},
		{
			Callsign: "LTBB_CTR",
			Polygon:  [][2]float64{{39, 26}, {39, 30}, {42, 30}, {42, 26}},
		},
	}

	t.Run("Approach uses own polygon", func(t *testing.T) {
		g := Resolve(station("EDDF_APP", whazzup.CategoryApproach), records)
		if g.Kind != KindPolygon || len(g.Ring) != 3 {
			t.Fatalf("got %+v, want 3-vertex polygon", g)
		}
		if g.Ring[0].Lat != 49 || g.Ring[0].Lng != 8 {
			t.Errorf("first vertex = %+v, want (49, 8)", g.Ring[0])
		}
	})

	t.Run("Center prefers subcenter polygon", func(t *testing.T) {
		g := Resolve(station("EDGG_CTR", whazzup.CategoryCenter), records)
		if g.Kind != KindPolygon || len(g.Ring) != 4 {
			t.Fatalf("got %+v, want 4-vertex subcenter polygon", g)
		}
		if g.Ring[0].Lat != 50 {
			t.Errorf("subcenter polygon not used: first vertex %+v", g.Ring[0])
		}
	})

	t.Run("Center falls back to own polygon", func(t *testing.T) {
		g := Resolve(station("LTBB_CTR", whazzup.CategoryCenter), records)
		if g.Kind != KindPolygon || len(g.Ring) != 4 {
			t.Fatalf("got %+v, want 4-vertex polygon", g)
		}
	})

	t.Run("FSS resolves like a center", func(t *testing.T) {
		g := Resolve(station("EDGG_CTR", whazzup.CategoryFSS), records)
		if g.Kind != KindPolygon || g.Ring[0].Lat != 50 {
			t.Fatalf("FSS did not prefer subcenter polygon: %+v", g)
		}
	})

	t.Run("No matching record", func(t *testing.T) {
		g := Resolve(station("KZNY_CTR", whazzup.CategoryCenter), records)
		if g.Kind != KindNone {
			t.Errorf("got %+v, want KindNone", g)
		}
	})

	t.Run("Unknown category", func(t *testing.T) {
		g := Resolve(station("EDGG_CTR", whazzup.CategoryUnknown), records)
		if g.Kind != KindNone {
			t.Errorf("got %+v, want KindNone", g)
		}
	})

	t.Run("Degenerate polygon resolves to none", func(t *testing.T) {
		short := []whazzup.CoverageRecord{{Callsign: "A_CTR", Polygon: [][2]float64{{1, 1}, {2, 2}}}}
		g := Resolve(station("A_CTR", whazzup.CategoryCenter), short)
		if g.Kind != KindNone {
			t.Errorf("2-vertex polygon should resolve to KindNone, got %+v", g)
		}
	})
}

func TestResolveDuplicateCallsign(t *testing.T) {
	records := []whazzup.CoverageRecord{
		{Callsign: "EDGG_CTR", Polygon: [][2]float64{{1, 1}, {1, 2}, {2, 2}}},
		{Callsign: "EDGG_CTR", Polygon: [][2]float64{{5, 5}, {5, 6}, {6, 6}}},
	}
	g := Resolve(station("EDGG_CTR", whazzup.CategoryCenter), records)
	if g.Kind != KindPolygon || g.Ring[0].Lat != 1 {
		t.Errorf("duplicate callsign should use the first record, got %+v", g)
	}
}

func TestResolveNormalizesLongitudes(t *testing.T) {
	records := []whazzup.CoverageRecord{
		{Callsign: "PAZA_CTR", Polygon: [][2]float64{{60, 190}, {60, 200}, {65, 200}}},
	}
	g := Resolve(station("PAZA_CTR", whazzup.CategoryCenter), records)
	if g.Kind != KindPolygon {
		t.Fatalf("got %+v, want polygon", g)
	}
	for i, p := range g.Ring {
		if p.Lng < -180 || p.Lng > 180 {
			t.Errorf("vertex %d longitude %v not normalized", i, p.Lng)
		}
	}
	if g.Ring[0].Lng != -170 {
		t.Errorf("first vertex longitude = %v, want -170", g.Ring[0].Lng)
	}
}

func TestRenderRing(t *testing.T) {
	st := station("LTBA_TWR", whazzup.CategoryTower)

	t.Run("Circle for tower", func(t *testing.T) {
		g := Resolve(st, nil)
		ring := RenderRing(st, g)
		if len(ring) != 36 {
			t.Errorf("circle ring has %d vertices, want 36", len(ring))
		}
	})

	t.Run("Star for ground", func(t *testing.T) {
		gnd := station("LTBA_GND", whazzup.CategoryGround)
		ring := RenderRing(gnd, Resolve(gnd, nil))
		if len(ring) != 8 {
			t.Errorf("star ring has %d vertices, want 8", len(ring))
		}
	})

	t.Run("Polygon passthrough", func(t *testing.T) {
		g := Geometry{Kind: KindPolygon, Ring: nil}
		if RenderRing(st, g) != nil {
			t.Error("empty polygon should render nil")
		}
	})

	t.Run("None renders nil", func(t *testing.T) {
		if RenderRing(st, Geometry{}) != nil {
			t.Error("KindNone should render nil")
		}
	})
}
