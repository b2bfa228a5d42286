package airports

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tkoksal/atcmap/pkg/geo"
)

// DefaultCacheSize covers the worldwide airport set comfortably; the
// working set per cycle is far smaller.
const DefaultCacheSize = 4096

type cacheEntry struct {
	point geo.Point
	ok    bool
}

// CachedSource wraps another Source with an LRU. Misses are cached too:
// flight plans referencing unknown airfields repeat every cycle and would
// otherwise hit the backing store each time.
type CachedSource struct {
	src   Source
	cache *lru.Cache[string, cacheEntry]
}

// NewCached wraps src. size <= 0 selects DefaultCacheSize.
func NewCached(src Source, size int) (*CachedSource, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachedSource{src: src, cache: c}, nil
}

// Coordinates implements Source. Backend errors are passed through
// uncached so a transient database failure does not poison the cache.
func (c *CachedSource) Coordinates(ctx context.Context, ident string) (geo.Point, bool, error) {
	if e, ok := c.cache.Get(ident); ok {
		return e.point, e.ok, nil
	}
	p, ok, err := c.src.Coordinates(ctx, ident)
	if err != nil {
		return geo.Point{}, false, err
	}
	c.cache.Add(ident, cacheEntry{point: p, ok: ok})
	return p, ok, nil
}
