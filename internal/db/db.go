// Package db provides PostgreSQL storage for the photo run ledger.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS photo_runs (
	id           UUID PRIMARY KEY,
	api_url      TEXT NOT NULL,
	catalog_path TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	total        INTEGER NOT NULL DEFAULT 0,
	ok           INTEGER NOT NULL DEFAULT 0,
	fail         INTEGER NOT NULL DEFAULT 0,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS photo_outcomes (
	id         BIGSERIAL PRIMARY KEY,
	run_id     UUID NOT NULL REFERENCES photo_runs(id) ON DELETE CASCADE,
	player_id  TEXT NOT NULL,
	nick       TEXT NOT NULL,
	status     TEXT NOT NULL,
	tier       TEXT,
	title      TEXT,
	source_url TEXT,
	photo      TEXT,
	message    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_photo_outcomes_run_id ON photo_outcomes(run_id);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the ledger tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun creates a new run record in the running state and returns its ID
func (db *DB) CreateRun(ctx context.Context, input *RunInput) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO photo_runs (id, api_url, catalog_path, status, total)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, input.APIURL, input.CatalogPath, RunStatusRunning, input.Total,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// RecordOutcome stores the result for one player of a run
func (db *DB) RecordOutcome(ctx context.Context, runID uuid.UUID, input *OutcomeInput) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO photo_outcomes (run_id, player_id, nick, status, tier, title, source_url, photo, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		runID, input.PlayerID, input.Nick, input.Status,
		input.Tier, input.Title, input.SourceURL, input.Photo, input.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", input.PlayerID, err)
	}
	return nil
}

// CompleteRun stores the final counts and status of a run
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, ok, fail int) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE photo_runs SET status = $1, ok = $2, fail = $3, completed_at = NOW() WHERE id = $4`,
		status, ok, fail, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to complete run: run %s not found", runID)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil when the run does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, api_url, catalog_path, status, total, ok, fail, started_at, completed_at
		 FROM photo_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.APIURL, &run.CatalogPath, &run.Status, &run.Total,
		&run.OK, &run.Fail, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListOutcomes returns a run's outcomes in the order they were recorded
func (db *DB) ListOutcomes(ctx context.Context, runID uuid.UUID) ([]Outcome, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, player_id, nick, status, tier, title, source_url, photo, message, created_at
		 FROM photo_outcomes WHERE run_id = $1 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.ID, &o.RunID, &o.PlayerID, &o.Nick, &o.Status, &o.Tier,
			&o.Title, &o.SourceURL, &o.Photo, &o.Message, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	return outcomes, nil
}
