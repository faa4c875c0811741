package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Generation outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeParseFailure     = "parse_failure"
	OutcomeTransportFailure = "transport_failure"
)

// Execution records metadata for a single generation attempt.
type Execution struct {
	Surface          string
	Model            string
	Outcome          string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of generation metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m Execution) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_metrics
			(surface, model, outcome, prompt_tokens, completion_tokens, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Surface, m.Model, m.Outcome, m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts)
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// SurfaceSummary aggregates attempts per surface and outcome.
type SurfaceSummary struct {
	Surface  string
	Outcome  string
	Attempts int
	AvgMS    float64
}

// Summarize returns attempt counts and average latency per surface/outcome
// for the last N days.
func (s *Store) Summarize(ctx context.Context, days int) ([]SurfaceSummary, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT surface, outcome, COUNT(*), AVG(latency_ms)
		FROM generation_metrics
		WHERE created_at >= ?
		GROUP BY surface, outcome
		ORDER BY surface, outcome`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize metrics: %w", err)
	}
	defer rows.Close()

	var out []SurfaceSummary
	for rows.Next() {
		var sum SurfaceSummary
		if err := rows.Scan(&sum.Surface, &sum.Outcome, &sum.Attempts, &sum.AvgMS); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Cleanup removes records older than the given number of days and reports how
// many were deleted.
func (s *Store) Cleanup(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM generation_metrics WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
