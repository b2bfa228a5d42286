// Package refresh owns the live snapshot. A single coordinator goroutine
// fetches the datafeed on a fixed interval (and on foreground or manual
// triggers), applies the non-empty replacement policy, recomputes traffic
// counts and publishes the result atomically. Readers always see a fully
// formed snapshot, never a partially updated one.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkoksal/atcmap/internal/countries"
	"github.com/tkoksal/atcmap/pkg/traffic"
	"github.com/tkoksal/atcmap/pkg/whazzup"
)

// DefaultInterval is the refresh cadence of the datafeed.
const DefaultInterval = 15 * time.Second

// Fetcher is the slice of the datafeed client the coordinator needs.
type Fetcher interface {
	FetchFeed(ctx context.Context) (*whazzup.Feed, error)
	FetchCoverage(ctx context.Context) ([]whazzup.CoverageRecord, error)
}

// Snapshot is one atomic view of the network. Once published it is never
// mutated; a new cycle builds a fresh Snapshot and swaps the pointer.
type Snapshot struct {
	Stations  []whazzup.Station
	Pilots    []whazzup.Pilot
	Coverage  []whazzup.CoverageRecord
	Countries map[string]string
	Counts    map[string]traffic.Count
	FetchedAt time.Time
}

// Coordinator runs the refresh loop and holds the current snapshot.
type Coordinator struct {
	fetcher       Fetcher
	countriesPath string
	interval      time.Duration
	log           *slog.Logger

	mu      sync.RWMutex
	current *Snapshot

	// trigger funnels foreground events and manual refreshes into the run
	// loop. Capacity one: a trigger arriving while a cycle is in flight
	// coalesces into a single follow-up cycle.
	trigger chan struct{}
}

// New creates a coordinator. countriesPath may be empty to skip country
// metadata. A zero interval selects DefaultInterval.
func New(fetcher Fetcher, countriesPath string, interval time.Duration, log *slog.Logger) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		fetcher:       fetcher,
		countriesPath: countriesPath,
		interval:      interval,
		log:           log,
		current:       &Snapshot{Counts: map[string]traffic.Count{}},
		trigger:       make(chan struct{}, 1),
	}
}

// Current returns the most recently published snapshot. Never nil.
func (c *Coordinator) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Refresh requests an immediate cycle (pull-to-refresh). If a cycle is
// already pending the request coalesces with it.
func (c *Coordinator) Refresh() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Foreground notes an application-foreground transition. It follows the
// same path as Refresh: run a cycle now, then restart the interval timer.
func (c *Coordinator) Foreground() {
	c.Refresh()
}

// Run executes refresh cycles until ctx is cancelled. Cycles are strictly
// serialized: the loop runs one at a time, and the interval timer is
// restarted after each cycle so only one periodic trigger is ever live.
func (c *Coordinator) Run(ctx context.Context) {
	c.cycle(ctx)

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-c.trigger:
		}

		c.cycle(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(c.interval)
	}
}

// RunOnce performs a single cycle synchronously. Used by one-shot tools
// and tests that do not want the loop.
func (c *Coordinator) RunOnce(ctx context.Context) {
	c.cycle(ctx)
}

// cycle fetches everything, applies the replacement policy and publishes.
// Fetches run concurrently and fail independently: a coverage outage must
// not cost us a fresh pilot list, and vice versa.
func (c *Coordinator) cycle(ctx context.Context) {
	prev := c.Current()

	var (
		feed    *whazzup.Feed
		feedErr error
		recs    []whazzup.CoverageRecord
		recsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		feed, feedErr = c.fetcher.FetchFeed(gctx)
		return nil
	})
	g.Go(func() error {
		recs, recsErr = c.fetcher.FetchCoverage(gctx)
		return nil
	})
	g.Wait()

	next := &Snapshot{
		Stations:  prev.Stations,
		Pilots:    prev.Pilots,
		Coverage:  prev.Coverage,
		Countries: prev.Countries,
		FetchedAt: time.Now().UTC(),
	}

	switch {
	case feedErr != nil:
		c.log.Warn("feed fetch failed, keeping previous snapshot", "error", feedErr)
	default:
		// Empty lists are treated like failures: the previous data stays
		// so a transient upstream hiccup does not blank the display.
		if len(feed.Stations) > 0 {
			next.Stations = feed.Stations
		} else {
			c.log.Warn("feed returned no stations, keeping previous")
		}
		if len(feed.Pilots) > 0 {
			next.Pilots = feed.Pilots
		} else {
			c.log.Warn("feed returned no pilots, keeping previous")
		}
	}

	switch {
	case recsErr != nil:
		c.log.Warn("coverage fetch failed, keeping previous records", "error", recsErr)
	case len(recs) == 0:
		c.log.Warn("coverage summary empty, keeping previous records")
	default:
		next.Coverage = recs
	}

	if c.countriesPath != "" {
		m, err := countries.Load(c.countriesPath)
		if err != nil {
			c.log.Warn("country metadata reload failed, keeping previous", "error", err)
		} else {
			next.Countries = m
		}
	}

	next.Counts = traffic.Compute(next.Stations, next.Pilots, next.Coverage)

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()

	c.log.Debug("snapshot published",
		"stations", len(next.Stations),
		"pilots", len(next.Pilots),
		"coverage", len(next.Coverage))
}
