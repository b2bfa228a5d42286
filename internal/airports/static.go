package airports

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tkoksal/atcmap/pkg/geo"
)

// StaticSource is an in-memory Source loaded from the airports CSV
// (ident,lat,lng). Used when no database is configured.
type StaticSource struct {
	m map[string]geo.Point
}

// LoadStatic reads a CSV file of airports. Rows that fail to parse are
// skipped; a reference file with a few bad rows should not take the
// whole lookup down.
func LoadStatic(path string) (*StaticSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airports file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse airports file: %w", err)
	}

	m := make(map[string]geo.Point, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		ident := strings.ToUpper(strings.TrimSpace(row[0]))
		if i == 0 && strings.EqualFold(ident, "ident") {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if ident == "" || errLat != nil || errLng != nil {
			continue
		}
		m[ident] = geo.Point{Lat: lat, Lng: geo.NormalizeLongitude(lng)}
	}
	return &StaticSource{m: m}, nil
}

// Coordinates implements Source.
func (s *StaticSource) Coordinates(_ context.Context, ident string) (geo.Point, bool, error) {
	p, ok := s.m[strings.ToUpper(strings.TrimSpace(ident))]
	return p, ok, nil
}

// Len returns the number of loaded airports.
func (s *StaticSource) Len() int {
	return len(s.m)
}
