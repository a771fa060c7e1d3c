package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/data"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/snapshot"
)

// SnapshotRepo persists snapshot builds. Runs are recorded once per run_id;
// statement rows are upserted on their natural key so re-running the same
// cutoff refreshes rows in place instead of duplicating them.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE IF NOT EXISTS snapshot_runs (
//	  run_id UUID PRIMARY KEY,
//	  cutoff DATE NOT NULL,
//	  period_type TEXT NOT NULL,
//	  built_at TIMESTAMPTZ NOT NULL,
//	  coverage_json JSONB NOT NULL
//	);
//	CREATE TABLE IF NOT EXISTS snapshot_rows (
//	  table_name TEXT NOT NULL,
//	  cik TEXT NOT NULL,
//	  accession TEXT NOT NULL,
//	  period_end TEXT NOT NULL,
//	  cutoff DATE NOT NULL,
//	  row_json JSONB NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL,
//	  PRIMARY KEY (table_name, cik, accession, period_end, cutoff)
//	);
type SnapshotRepo struct{}

// NewSnapshotRepo creates a repository instance over the shared pool.
func NewSnapshotRepo() *SnapshotRepo {
	return &SnapshotRepo{}
}

// Save persists one build: the run record plus every statement row.
func (r *SnapshotRepo) Save(ctx context.Context, result *snapshot.Result) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	coverageJSON, err := json.Marshal(result.Coverage)
	if err != nil {
		return fmt.Errorf("failed to marshal coverage report: %w", err)
	}

	runQuery := `
		INSERT INTO snapshot_runs (run_id, cutoff, period_type, built_at, coverage_json)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			coverage_json = EXCLUDED.coverage_json,
			built_at = EXCLUDED.built_at;
	`
	if _, err := pool.Exec(ctx, runQuery,
		result.RunID, result.Cutoff, string(result.PeriodType), result.BuiltAt, coverageJSON); err != nil {
		return fmt.Errorf("failed to save snapshot run: %w", err)
	}

	cutoff := result.Cutoff
	if err := saveRows(ctx, cutoff, data.TableIncome, result.Tables.Income, func(row data.IncomeRow) data.StatementMeta {
		return row.StatementMeta
	}); err != nil {
		return err
	}
	if err := saveRows(ctx, cutoff, data.TableBalance, result.Tables.Balance, func(row data.BalanceRow) data.StatementMeta {
		return row.StatementMeta
	}); err != nil {
		return err
	}
	if err := saveRows(ctx, cutoff, data.TableCashflow, result.Tables.Cashflow, func(row data.CashflowRow) data.StatementMeta {
		return row.StatementMeta
	}); err != nil {
		return err
	}
	if err := saveRows(ctx, cutoff, data.TableDerived, result.Tables.Derived, func(row data.DerivedRow) data.StatementMeta {
		return row.StatementMeta
	}); err != nil {
		return err
	}
	return nil
}

func saveRows[T any](ctx context.Context, cutoff time.Time, table string, rows []T, meta func(T) data.StatementMeta) error {
	pool := GetPool()
	query := `
		INSERT INTO snapshot_rows (table_name, cik, accession, period_end, cutoff, row_json, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (table_name, cik, accession, period_end, cutoff)
		DO UPDATE SET
			row_json = EXCLUDED.row_json,
			updated_at = NOW();
	`
	for _, row := range rows {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal %s row: %w", table, err)
		}
		m := meta(row)
		if _, err := pool.Exec(ctx, query, table, m.CIK, m.Accession, m.PeriodEnd, cutoff, rowJSON); err != nil {
			return fmt.Errorf("failed to save %s row %s: %w", table, m.Key(), err)
		}
	}
	return nil
}

// RunSummary is one persisted run as listed by the read API.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Cutoff     time.Time `json:"cutoff"`
	PeriodType string    `json:"period_type"`
	BuiltAt    time.Time `json:"built_at"`
}

// ListRuns returns persisted runs, newest first.
func (r *SnapshotRepo) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := pool.Query(ctx,
		`SELECT run_id, cutoff, period_type, built_at FROM snapshot_runs ORDER BY built_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.Cutoff, &s.PeriodType, &s.BuiltAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadCoverage retrieves one run's coverage report.
func (r *SnapshotRepo) LoadCoverage(ctx context.Context, runID string) (*snapshot.CoverageReport, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var coverageJSON []byte
	err := pool.QueryRow(ctx,
		`SELECT coverage_json FROM snapshot_runs WHERE run_id = $1`, runID).Scan(&coverageJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no run found with id %s", runID)
		}
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	var report snapshot.CoverageReport
	if err := json.Unmarshal(coverageJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coverage report: %w", err)
	}
	return &report, nil
}
