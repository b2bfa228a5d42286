package airports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/tkoksal/atcmap/pkg/config"
	"github.com/tkoksal/atcmap/pkg/geo"
)

const schema = `
CREATE TABLE IF NOT EXISTS airports (
    ident      TEXT PRIMARY KEY,
    latitude   DOUBLE PRECISION NOT NULL,
    longitude  DOUBLE PRECISION NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Repository is a Source backed by PostgreSQL.
type Repository struct {
	db *sql.DB
}

// Connect opens the database, configures the pool and verifies the
// connection.
func Connect(cfg config.DatabaseConfig) (*Repository, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

// InitSchema creates the airports table if missing. Called once at
// startup by the daemon and the importer.
func (r *Repository) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Coordinates implements Source.
func (r *Repository) Coordinates(ctx context.Context, ident string) (geo.Point, bool, error) {
	ident = strings.ToUpper(strings.TrimSpace(ident))
	if ident == "" {
		return geo.Point{}, false, nil
	}

	var p geo.Point
	err := r.db.QueryRowContext(ctx,
		`SELECT latitude, longitude FROM airports WHERE ident = $1`,
		ident,
	).Scan(&p.Lat, &p.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return geo.Point{}, false, nil
	}
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("lookup airport %s: %w", ident, err)
	}
	return p, true, nil
}

// UpsertBatch writes a batch of airports in one transaction. Existing
// rows are overwritten; the importer re-runs against fresh reference data
// periodically.
func (r *Repository) UpsertBatch(ctx context.Context, batch []Airport) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO airports (ident, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (ident) DO UPDATE
		SET latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    updated_at = now()`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range batch {
		ident := strings.ToUpper(strings.TrimSpace(a.Ident))
		if ident == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, ident, a.Latitude, a.Longitude); err != nil {
			return fmt.Errorf("upsert airport %s: %w", ident, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored airports.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM airports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count airports: %w", err)
	}
	return n, nil
}
