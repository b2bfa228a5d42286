// Package airports provides the local airport-coordinate lookup: ICAO
// identifier to latitude/longitude. The canonical store is a PostgreSQL
// table fed by the importer; deployments without a database use the
// static CSV source. A lookup miss is an answer ("no coordinates"), not
// an error.
package airports

import (
	"context"

	"github.com/tkoksal/atcmap/pkg/geo"
)

// Source resolves an airport identifier to coordinates. ok is false when
// the identifier is unknown; err is reserved for infrastructure failures
// (broken connection, unreadable file).
type Source interface {
	Coordinates(ctx context.Context, ident string) (p geo.Point, ok bool, err error)
}

// Airport is one row of the lookup table.
type Airport struct {
	Ident     string
	Latitude  float64
	Longitude float64
}
