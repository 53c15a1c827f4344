// Package store keeps a history of terrain runs in SQLite: run metadata,
// the JSON report and compressed copies of the input and output grids.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/terrain.report/internal/monitoring"
	"github.com/banshee-data/terrain.report/internal/terrain"
	"github.com/banshee-data/terrain.report/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("store: run not found")

// Store is a run history database.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Run is one stored computation.
type Run struct {
	ID         string // assigned by RecordRun when empty
	CreatedAt  time.Time
	Version    string
	Surface    string
	Lighting   terrain.LightingConfig
	Duration   time.Duration
	ReportJSON string
	Elevation  *terrain.ElevationGrid
	Grids      *terrain.DerivativeGrids
}

// RunSummary is the listing form of a Run, without grids.
type RunSummary struct {
	ID        string
	CreatedAt time.Time
	Surface   string
	Rows      int
	Cols      int
	Lighting  terrain.LightingConfig
	Duration  time.Duration
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	return OpenWithClock(path, timeutil.RealClock{})
}

// OpenWithClock is Open with an injectable clock for CreatedAt defaults.
func OpenWithClock(path string, clock timeutil.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	monitoring.Debugf("opened run database %s", path)
	return &Store{db: db, clock: clock}, nil
}

// migrateUp applies the embedded migrations.
// The migrate instance is not closed because that would close db.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun stores run and returns its id. Elevation and Grids are required.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.Elevation == nil || run.Grids == nil {
		return "", fmt.Errorf("run has no grids")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock.Now()
	}

	elevBlob, err := encodeGrid(run.Elevation.Matrix())
	if err != nil {
		return "", fmt.Errorf("elevation: %w", err)
	}
	slopeBlob, err := encodeGrid(run.Grids.Slope)
	if err != nil {
		return "", fmt.Errorf("slope: %w", err)
	}
	aspectBlob, err := encodeGrid(run.Grids.Aspect)
	if err != nil {
		return "", fmt.Errorf("aspect: %w", err)
	}
	shadeBlob, err := encodeGrid(run.Grids.Hillshade)
	if err != nil {
		return "", fmt.Errorf("hillshade: %w", err)
	}

	rows, cols := run.Elevation.Dims()
	dx, dy := run.Elevation.CellSize()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO terrain_runs (
			run_id, created_unix_nanos, version, surface, grid_rows, grid_cols,
			cell_size_x, cell_size_y, altitude_deg, azimuth_deg, duration_nanos,
			report_json, elevation_blob, slope_blob, aspect_blob, hillshade_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Version, run.Surface, rows, cols,
		dx, dy, run.Lighting.AltitudeDeg, run.Lighting.AzimuthDeg, int64(run.Duration),
		run.ReportJSON, elevBlob, slopeBlob, aspectBlob, shadeBlob,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return run.ID, nil
}

// GetRun loads a run with its grids.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var (
		run                                        Run
		created, durationNanos                     int64
		dx, dy                                     float64
		rows, cols                                 int
		elevBlob, slopeBlob, aspectBlob, shadeBlob []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, created_unix_nanos, version, surface, grid_rows, grid_cols,
			cell_size_x, cell_size_y, altitude_deg, azimuth_deg, duration_nanos,
			report_json, elevation_blob, slope_blob, aspect_blob, hillshade_blob
		FROM terrain_runs WHERE run_id = ?`, id,
	).Scan(
		&run.ID, &created, &run.Version, &run.Surface, &rows, &cols,
		&dx, &dy, &run.Lighting.AltitudeDeg, &run.Lighting.AzimuthDeg, &durationNanos,
		&run.ReportJSON, &elevBlob, &slopeBlob, &aspectBlob, &shadeBlob,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	run.Duration = time.Duration(durationNanos)

	heights, err := decodeGrid(elevBlob, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("elevation: %w", err)
	}
	if run.Elevation, err = terrain.NewElevationGridFromMatrix(heights, dx, dy); err != nil {
		return nil, err
	}
	run.Grids = &terrain.DerivativeGrids{}
	if run.Grids.Slope, err = decodeGrid(slopeBlob, rows, cols); err != nil {
		return nil, fmt.Errorf("slope: %w", err)
	}
	if run.Grids.Aspect, err = decodeGrid(aspectBlob, rows, cols); err != nil {
		return nil, fmt.Errorf("aspect: %w", err)
	}
	if run.Grids.Hillshade, err = decodeGrid(shadeBlob, rows, cols); err != nil {
		return nil, fmt.Errorf("hillshade: %w", err)
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means 100.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, created_unix_nanos, surface, grid_rows, grid_cols,
			altitude_deg, azimuth_deg, duration_nanos
		FROM terrain_runs ORDER BY created_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r                      RunSummary
			created, durationNanos int64
		)
		if err := rows.Scan(&r.ID, &created, &r.Surface, &r.Rows, &r.Cols,
			&r.Lighting.AltitudeDeg, &r.Lighting.AzimuthDeg, &durationNanos); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		r.Duration = time.Duration(durationNanos)
		out = append(out, r)
	}
	return out, rows.Err()
}
