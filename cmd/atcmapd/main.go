// atcmapd polls the aviation-network datafeed, aggregates traffic per ATC
// station and serves the result over a read-only HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"

	"github.com/tkoksal/atcmap/internal/airports"
	"github.com/tkoksal/atcmap/internal/logging"
	"github.com/tkoksal/atcmap/internal/refresh"
	"github.com/tkoksal/atcmap/internal/server"
	"github.com/tkoksal/atcmap/pkg/config"
	"github.com/tkoksal/atcmap/pkg/whazzup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("atcmapd", flag.ExitOnError)
	var (
		configPath = fs.String("config", "configs/config.json", "path to configuration file")
		logLevel   = fs.String("log-level", "", "override configured log level")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("ATCMAP")); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Dir)
	log.Info("starting atcmapd",
		"feed", cfg.Feed.URL,
		"interval_seconds", cfg.Feed.IntervalSeconds,
		"listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The airport lookup is presentation-side reference data; the daemon
	// starts fine without either source and simply answers no coordinates.
	source, cleanup := openAirports(cfg, log)
	if cleanup != nil {
		defer cleanup()
	}

	client := whazzup.NewClient(whazzup.Config{
		FeedURL:           cfg.Feed.URL,
		CoverageURL:       cfg.Feed.CoverageURL,
		RequestsPerMinute: cfg.Feed.RequestsPerMinute,
		Timeout:           time.Duration(cfg.Feed.TimeoutSeconds) * time.Second,
	})

	coord := refresh.New(client, cfg.Data.CountriesFile,
		time.Duration(cfg.Feed.IntervalSeconds)*time.Second, log)

	go coord.Run(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.New(coord, source, cfg.Server.AllowedOrigins, log).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openAirports picks the database repository when enabled, falling back to
// the static CSV, and wraps whichever worked in an LRU cache.
func openAirports(cfg *config.Config, log *slog.Logger) (airports.Source, func()) {
	var (
		src     airports.Source
		cleanup func()
	)

	if cfg.Database.Enabled {
		repo, err := airports.Connect(cfg.Database)
		if err != nil {
			log.Warn("airport database unavailable, trying static file", "error", err)
		} else if err := repo.InitSchema(context.Background()); err != nil {
			log.Warn("airport schema init failed, trying static file", "error", err)
			repo.Close()
		} else {
			src = repo
			cleanup = func() { repo.Close() }
		}
	}

	if src == nil && cfg.Data.AirportsFile != "" {
		static, err := airports.LoadStatic(cfg.Data.AirportsFile)
		if err != nil {
			log.Warn("airports file unavailable", "error", err)
		} else {
			log.Info("airport lookup from static file", "airports", static.Len())
			src = static
		}
	}

	if src == nil {
		return nil, cleanup
	}

	cached, err := airports.NewCached(src, airports.DefaultCacheSize)
	if err != nil {
		log.Warn("airport cache disabled", "error", err)
		return src, cleanup
	}
	return cached, cleanup
}
