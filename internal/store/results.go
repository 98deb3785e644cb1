// Package store persists one output record per batch invocation.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/avssa/internal/contracts"
)

// ResultsRepository saves criteria runs and market status verdicts.
// ⭐ SSOT: 평가 결과 저장은 여기서만
type ResultsRepository struct {
	pool *pgxpool.Pool
}

// NewResultsRepository creates a results repository.
func NewResultsRepository(pool *pgxpool.Pool) *ResultsRepository {
	return &ResultsRepository{pool: pool}
}

// SaveCriteriaRun upserts one row per evaluated stock for the run date.
func (r *ResultsRepository) SaveCriteriaRun(ctx context.Context, date time.Time, reports map[string]*contracts.CriteriaReport) error {
	query := `
		INSERT INTO screening.criteria_results (run_date, stock_code, all_met, report)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_date, stock_code)
		DO UPDATE SET all_met = EXCLUDED.all_met, report = EXCLUDED.report, updated_at = now()
	`

	for code, report := range reports {
		payload, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal report for %s: %w", code, err)
		}

		if _, err := r.pool.Exec(ctx, query, date, code, report.AllMet, payload); err != nil {
			return fmt.Errorf("save criteria result for %s: %w", code, err)
		}
	}

	return nil
}

// SaveMarketStatus upserts one row per index for the run date.
func (r *ResultsRepository) SaveMarketStatus(ctx context.Context, date time.Time, status map[string]*contracts.RegimeVerdict) error {
	query := `
		INSERT INTO screening.market_status (run_date, index_name, status, current_value, ma_values, reason, data_days, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_date, index_name)
		DO UPDATE SET
			status = EXCLUDED.status,
			current_value = EXCLUDED.current_value,
			ma_values = EXCLUDED.ma_values,
			reason = EXCLUDED.reason,
			data_days = EXCLUDED.data_days,
			evaluated_at = EXCLUDED.evaluated_at
	`

	for name, verdict := range status {
		maValues, err := json.Marshal(verdict.MAValues)
		if err != nil {
			return fmt.Errorf("marshal ma_values for %s: %w", name, err)
		}

		_, err = r.pool.Exec(ctx, query,
			date, name, string(verdict.Status), verdict.Current,
			maValues, verdict.Reason, verdict.DataDays, verdict.EvaluatedAt,
		)
		if err != nil {
			return fmt.Errorf("save market status for %s: %w", name, err)
		}
	}

	return nil
}

// LatestRunDate returns the most recent run date with saved criteria
// results, or zero time when none exist.
func (r *ResultsRepository) LatestRunDate(ctx context.Context) (time.Time, error) {
	var date *time.Time
	err := r.pool.QueryRow(ctx, `SELECT max(run_date) FROM screening.criteria_results`).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest run date: %w", err)
	}
	if date == nil {
		return time.Time{}, nil
	}
	return *date, nil
}
