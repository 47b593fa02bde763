package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

// AnalysisRun is one persisted analyzer execution with its search criteria
// and terminal outcome.
type AnalysisRun struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	SearchTerm    string     `db:"search_term" json:"search_term"`
	MinPricePerTB float64    `db:"min_price_per_tb" json:"min_price_per_tb"`
	MaxPricePerTB float64    `db:"max_price_per_tb" json:"max_price_per_tb"`
	DesiredCount  int        `db:"desired_count" json:"desired_count"`
	State         string     `db:"state" json:"state"`
	ListingCount  int        `db:"listing_count" json:"listing_count"`
	ValidCount    int        `db:"valid_count" json:"valid_count"`
	StartedAt     time.Time  `db:"started_at" json:"started_at"`
	FinishedAt    *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// Migrate creates the analyzer tables when they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			search_term TEXT NOT NULL,
			min_price_per_tb DOUBLE PRECISION NOT NULL,
			max_price_per_tb DOUBLE PRECISION NOT NULL,
			desired_count INTEGER NOT NULL,
			state TEXT NOT NULL,
			listing_count INTEGER NOT NULL DEFAULT 0,
			valid_count INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS analyzed_listings (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			price_usd DOUBLE PRECISION NOT NULL,
			capacity_tb DOUBLE PRECISION NOT NULL,
			price_per_tb DOUBLE PRECISION NOT NULL,
			url TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_analyzed_listings_run ON analyzed_listings(run_id, price_per_tb);`

	if _, err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (db *DB) InsertRun(ctx context.Context, run *AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs
		(id, search_term, min_price_per_tb, max_price_per_tb, desired_count, state, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.Exec(ctx, query,
		run.ID, run.SearchTerm, run.MinPricePerTB, run.MaxPricePerTB,
		run.DesiredCount, run.State, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal state and result counts.
func (db *DB) FinishRun(ctx context.Context, id uuid.UUID, state string, listingCount, validCount int) error {
	query := `
		UPDATE analysis_runs SET
			state = $2,
			listing_count = $3,
			valid_count = $4,
			finished_at = NOW()
		WHERE id = $1`

	_, err := db.Exec(ctx, query, id, state, listingCount, validCount)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// InsertListings stores a run's analyzed listings in accumulation order.
func (db *DB) InsertListings(ctx context.Context, runID uuid.UUID, listings []models.AnalyzedListing) error {
	if len(listings) == 0 {
		return nil
	}

	return db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO analyzed_listings (run_id, title, price_usd, capacity_tb, price_per_tb, url)
			VALUES ($1, $2, $3, $4, $5, $6)`

		for _, l := range listings {
			if _, err := tx.Exec(ctx, query, runID, l.Title, l.PriceUSD, l.CapacityTB, l.PricePerTB, l.URL); err != nil {
				return fmt.Errorf("failed to insert listing: %w", err)
			}
		}
		return nil
	})
}

func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*AnalysisRun, error) {
	query := `
		SELECT id, search_term, min_price_per_tb, max_price_per_tb, desired_count,
		       state, listing_count, valid_count, started_at, finished_at
		FROM analysis_runs
		WHERE id = $1`

	run := &AnalysisRun{}
	err := db.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.SearchTerm, &run.MinPricePerTB, &run.MaxPricePerTB, &run.DesiredCount,
		&run.State, &run.ListingCount, &run.ValidCount, &run.StartedAt, &run.FinishedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (db *DB) ListRuns(ctx context.Context, limit int) ([]*AnalysisRun, error) {
	query := `
		SELECT id, search_term, min_price_per_tb, max_price_per_tb, desired_count,
		       state, listing_count, valid_count, started_at, finished_at
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		run := &AnalysisRun{}
		err := rows.Scan(
			&run.ID, &run.SearchTerm, &run.MinPricePerTB, &run.MaxPricePerTB, &run.DesiredCount,
			&run.State, &run.ListingCount, &run.ValidCount, &run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// RunStats aggregates what the analyzer has done so far.
type RunStats struct {
	TotalRuns     int            `json:"total_runs"`
	TotalListings int            `json:"total_listings"`
	RunsByState   map[string]int `json:"runs_by_state"`
}

func (db *DB) GetRunStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{RunsByState: make(map[string]int)}

	rows, err := db.Query(ctx, `SELECT state, COUNT(*) FROM analysis_runs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan run count: %w", err)
		}
		stats.RunsByState[state] = count
		stats.TotalRuns += count
	}

	row := db.QueryRow(ctx, `SELECT COUNT(*) FROM analyzed_listings`)
	if err := row.Scan(&stats.TotalListings); err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	return stats, nil
}

// GetRunListings returns a run's listings sorted cheapest-first.
func (db *DB) GetRunListings(ctx context.Context, runID uuid.UUID) ([]models.AnalyzedListing, error) {
	query := `
		SELECT title, price_usd, capacity_tb, price_per_tb, url
		FROM analyzed_listings
		WHERE run_id = $1
		ORDER BY price_per_tb ASC, id ASC`

	rows, err := db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run listings: %w", err)
	}
	defer rows.Close()

	var listings []models.AnalyzedListing
	for rows.Next() {
		var l models.AnalyzedListing
		if err := rows.Scan(&l.Title, &l.PriceUSD, &l.CapacityTB, &l.PricePerTB, &l.URL); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}
