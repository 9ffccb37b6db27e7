package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, started_at, finished_at, status, message_count, llm_type,
	embedding_provider, model_name, turn_count, average_deviation, max_deviation,
	deviation_trend, insights, insights_degraded, missing_sections, report, error`

// RunRepo provides methods for analysis-run operations.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Create inserts a new run. Status defaults to running.
func (r *RunRepo) Create(ctx context.Context, run Run) error {
	if run.Status == "" {
		run.Status = RunRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Insights == "" {
		run.Insights = "{}"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, started_at, status, message_count, llm_type, embedding_provider, model_name, insights)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, string(run.Status), run.MessageCount,
		run.LLMType, run.EmbeddingProvider, run.ModelName, run.Insights,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish records the outcome of a run and stamps finished_at.
func (r *RunRepo) Finish(ctx context.Context, id string, out RunOutcome) error {
	insights := out.Insights
	if insights == "" {
		insights = "{}"
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE analysis_runs SET
			finished_at = ?, status = ?, turn_count = ?, average_deviation = ?,
			max_deviation = ?, deviation_trend = ?, insights = ?, insights_degraded = ?,
			missing_sections = ?, report = ?, error = ?
		WHERE id = ?`,
		time.Now().UTC(), string(out.Status), out.TurnCount,
		nullFloat(out.AverageDeviation), nullFloat(out.MaxDeviation),
		out.DeviationTrend, insights, out.InsightsDegraded,
		strings.Join(out.MissingSections, ","), out.Report, out.Error,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetByID returns the run with the given id.
func (r *RunRepo) GetByID(ctx context.Context, id string) (Run, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM analysis_runs WHERE id = ?", id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM analysis_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run         Run
		status      string
		finishedAt  sql.NullTime
		avgDev      sql.NullFloat64
		maxDev      sql.NullFloat64
		missingList string
	)

	err := s.Scan(
		&run.ID, &run.StartedAt, &finishedAt, &status, &run.MessageCount, &run.LLMType,
		&run.EmbeddingProvider, &run.ModelName, &run.TurnCount, &avgDev, &maxDev,
		&run.DeviationTrend, &run.Insights, &run.InsightsDegraded, &missingList, &run.Report, &run.Error,
	)
	if err != nil {
		return Run{}, err
	}

	run.Status = RunStatus(status)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	if avgDev.Valid {
		v := avgDev.Float64
		run.AverageDeviation = &v
	}
	if maxDev.Valid {
		v := maxDev.Float64
		run.MaxDeviation = &v
	}
	if missingList != "" {
		run.MissingSections = strings.Split(missingList, ",")
	}
	return run, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
