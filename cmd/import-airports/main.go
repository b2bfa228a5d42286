// import-airports loads the airport coordinate reference CSV into the
// PostgreSQL lookup table used by atcmapd.
//
// The expected file format is ident,lat,lng with an optional header row,
// e.g. the airports extract published by ourairports.com cut down to
// those three columns.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/peterbourgon/ff/v3"

	"github.com/tkoksal/atcmap/internal/airports"
	"github.com/tkoksal/atcmap/pkg/config"
)

const batchSize = 500

func main() {
	fs := flag.NewFlagSet("import-airports", flag.ExitOnError)
	var (
		configPath = fs.String("config", "configs/config.json", "path to configuration file")
		csvPath    = fs.String("airports", "", "airports CSV (default: data.airports_file from config)")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("ATCMAP")); err != nil {
		log.Fatal(err)
	}

	log.Println("===========================================")
	log.Println("  Airport Coordinate Importer")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	path := *csvPath
	if path == "" {
		path = cfg.Data.AirportsFile
	}
	if path == "" {
		log.Fatal("No airports file given (use -airports or data.airports_file)")
	}

	log.Println("Connecting to database...")
	repo, err := airports.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()
	log.Println("✓ Database connected")

	ctx := context.Background()
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("✓ Schema initialized")

	imported, skipped, err := importFile(ctx, repo, path)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count airports: %v", err)
	}

	log.Printf("✓ Imported %d airports (%d rows skipped)", imported, skipped)
	log.Printf("✓ Table now holds %d airports", total)
}

func importFile(ctx context.Context, repo *airports.Repository, path string) (imported, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var batch []airports.Airport
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < 3 {
			skipped++
			continue
		}

		ident := strings.ToUpper(strings.TrimSpace(fields[0]))
		if line == 1 && strings.EqualFold(ident, "ident") {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if ident == "" || errLat != nil || errLng != nil {
			skipped++
			continue
		}

		batch = append(batch, airports.Airport{Ident: ident, Latitude: lat, Longitude: lng})
		if len(batch) >= batchSize {
			if err := repo.UpsertBatch(ctx, batch); err != nil {
				return imported, skipped, err
			}
			imported += len(batch)
			batch = batch[:0]
			if imported%5000 == 0 {
				log.Printf("  ... %d airports", imported)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return imported, skipped, err
	}

	if len(batch) > 0 {
		if err := repo.UpsertBatch(ctx, batch); err != nil {
			return imported, skipped, err
		}
		imported += len(batch)
	}
	return imported, skipped, nil
}
