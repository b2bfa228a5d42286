package airports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tkoksal/atcmap/pkg/geo"
)

func writeAirports(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airports.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStaticSource(t *testing.T) {
	src, err := LoadStatic(writeAirports(t,
		"ident,lat,lng\nLTBA,40.9769,28.8146\nEDDF,50.0379,8.5622\nbad,notanumber,8\n"))
	if err != nil {
		t.Fatalf("LoadStatic failed: %v", err)
	}
	if src.Len() != 2 {
		t.Fatalf("Expected 2 airports, got %d", src.Len())
	}

	ctx := context.Background()

	p, ok, err := src.Coordinates(ctx, "LTBA")
	if err != nil || !ok {
		t.Fatalf("LTBA lookup: ok=%v err=%v", ok, err)
	}
	if p.Lat != 40.9769 {
		t.Errorf("LTBA latitude = %v, want 40.9769", p.Lat)
	}

	// Case and whitespace insensitive.
	if _, ok, _ := src.Coordinates(ctx, " eddf "); !ok {
		t.Error("lowercase lookup should succeed")
	}

	// Miss is not an error.
	if _, ok, err := src.Coordinates(ctx, "XXXX"); ok || err != nil {
		t.Errorf("unknown airport: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestStaticSourceMissingFile(t *testing.T) {
	if _, err := LoadStatic(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

// countingSource records how often the backing store is consulted.
type countingSource struct {
	mu    sync.Mutex
	calls int
	data  map[string]geo.Point
	err   error
}

func (s *countingSource) Coordinates(_ context.Context, ident string) (geo.Point, bool, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return geo.Point{}, false, s.err
	}
	p, ok := s.data[ident]
	return p, ok, nil
}

func TestCachedSource(t *testing.T) {
	backing := &countingSource{data: map[string]geo.Point{"LTBA": {Lat: 41, Lng: 29}}}
	src, err := NewCached(backing, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, ok, _ := src.Coordinates(ctx, "LTBA"); !ok {
			t.Fatal("hit expected")
		}
	}
	if backing.calls != 1 {
		t.Errorf("backing store consulted %d times, want 1", backing.calls)
	}

	// Misses are cached as well.
	for i := 0; i < 5; i++ {
		if _, ok, _ := src.Coordinates(ctx, "XXXX"); ok {
			t.Fatal("miss expected")
		}
	}
	if backing.calls != 2 {
		t.Errorf("backing store consulted %d times, want 2", backing.calls)
	}
}

func TestCachedSourceErrorNotCached(t *testing.T) {
	backing := &countingSource{err: errors.New("db down")}
	src, err := NewCached(backing, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, _, err := src.Coordinates(ctx, "LTBA"); err == nil {
		t.Fatal("Expected backend error to surface")
	}
	if _, _, err := src.Coordinates(ctx, "LTBA"); err == nil {
		t.Fatal("Error responses must not be cached")
	}
	if backing.calls != 2 {
		t.Errorf("backing store consulted %d times, want 2", backing.calls)
	}
}
