// Package geo provides the planar geometry primitives used for station
// coverage shapes: longitude wrapping, an even-odd point-in-polygon test,
// and generation of circle and star rings for fixed-radius stations.
//
// All positions are WGS84 decimal degrees. The tests here are deliberately
// planar (latitude/longitude treated as a flat plane); coverage polygons in
// the datafeed are small enough that great-circle corrections do not change
// any classification at the scales involved.
package geo

import "math"

const (
	// KmPerDegree is the approximate length of one degree of latitude in
	// kilometers. It backs the flat-Earth radius conversion applied to
	// fixed-radius station shapes; polygon coverage never goes through it.
	KmPerDegree = 111.32

	// DegreesToRadians converts degrees to radians.
	DegreesToRadians = math.Pi / 180.0
)

// Point is a position in decimal degrees.
// Positive latitude is north, positive longitude is east.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NormalizeLongitude wraps a longitude into [-180, 180]. Values already in
// range are returned unchanged, so the function is idempotent, and the
// modulo formulation terminates for any finite input no matter how far the
// value has drifted.
func NormalizeLongitude(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

// KmToDegrees converts a kilometer distance to its approximate equivalent
// in degrees of latitude.
func KmToDegrees(km float64) float64 {
	return km / KmPerDegree
}

// PointInPolygon reports whether p lies inside ring using the even-odd
// rule. The ring is implicitly closed: the edge from the last vertex back
// to the first is part of the boundary. Rings with fewer than three
// vertices contain nothing.
//
// The straddle test compares both edge endpoints against the point's
// latitude with the same strict inequality, so an edge whose endpoints
// share a latitude can never straddle and is skipped. That also keeps the
// interpolation divisor nonzero; horizontal edges never divide by zero.
// A point placed exactly on a vertex resolves deterministically (the
// half-open straddle counts the lower endpoint of an edge, not the upper)
// and never panics.
func PointInPolygon(p Point, ring []Point) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := a.Lng + (p.Lat-a.Lat)*(b.Lng-a.Lng)/(b.Lat-a.Lat)
			if p.Lng < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// CircleRing generates a closed ring of segments vertices approximating a
// circle of radiusM meters around center. Longitude offsets are divided by
// cos(lat) so the circle stays visually round under an equirectangular
// projection.
func CircleRing(center Point, radiusM float64, segments int) []Point {
	if segments < 3 {
		segments = 3
	}
	r := KmToDegrees(radiusM / 1000)
	cosLat := latCosine(center.Lat)
	ring := make([]Point, 0, segments)
	step := 360.0 / float64(segments)
	for i := 0; i < segments; i++ {
		ang := float64(i) * step * DegreesToRadians
		ring = append(ring, Point{
			Lat: center.Lat + r*math.Sin(ang),
			Lng: NormalizeLongitude(center.Lng + r*math.Cos(ang)/cosLat),
		})
	}
	return ring
}

// StarRing generates a closed star-shaped ring around center. The ring has
// 2*points vertices alternating between the full radius and 0.3 of it,
// laid out at equal angular steps starting from the top (-90 degrees) plus
// rotationDeg. Rotation distinguishes otherwise identical shapes on a map:
// ground and delivery stations share the same star at different rotations.
func StarRing(center Point, radiusM float64, points int, rotationDeg float64) []Point {
	if points < 2 {
		points = 2
	}
	outer := KmToDegrees(radiusM / 1000)
	inner := 0.3 * outer
	cosLat := latCosine(center.Lat)
	n := 2 * points
	ring := make([]Point, 0, n)
	step := 360.0 / float64(n)
	for i := 0; i < n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		ang := (-90 + rotationDeg + float64(i)*step) * DegreesToRadians
		ring = append(ring, Point{
			Lat: center.Lat + r*math.Sin(ang),
			Lng: NormalizeLongitude(center.Lng + r*math.Cos(ang)/cosLat),
		})
	}
	return ring
}

// latCosine guards the equirectangular longitude correction near the
// poles, where cos(lat) approaches zero.
func latCosine(lat float64) float64 {
	c := math.Cos(lat * DegreesToRadians)
	if math.Abs(c) < 1e-6 {
		return 1e-6
	}
	return c
}
