// Package history persists one row per rebalance run for audit and the
// /api/history endpoint.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Run is one persisted rebalance run summary.
type Run struct {
	RunID      string            `json:"run_id"`
	Wallet     string            `json:"wallet"`
	Profile    string            `json:"profile"`
	Target     domain.Allocation `json:"target"`
	Transfers  int               `json:"transfers"`
	Deferrals  int               `json:"deferrals"`
	Errors     int               `json:"errors"`
	OK         bool              `json:"ok"`
	DurationMS int64             `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Repository handles rebalance run database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new history repository and ensures its schema.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
	if err := r.ensureSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS rebalance_runs (
		run_id      TEXT PRIMARY KEY,
		wallet      TEXT NOT NULL,
		profile     TEXT NOT NULL,
		target_json TEXT NOT NULL,
		transfers   INTEGER NOT NULL,
		deferrals   INTEGER NOT NULL,
		errors      INTEGER NOT NULL,
		ok          INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create rebalance_runs table: %w", err)
	}
	return nil
}

// Record appends one run. The history ledger is best-effort from the
// orchestrator's perspective; the caller logs and continues on error.
func (r *Repository) Record(report *domain.RebalanceReport) error {
	targetJSON, err := json.Marshal(report.Target)
	if err != nil {
		return fmt.Errorf("failed to marshal target allocation: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO rebalance_runs
		(run_id, wallet, profile, target_json, transfers, deferrals, errors, ok, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.Wallet,
		string(report.Profile),
		string(targetJSON),
		len(report.Executed),
		len(report.Deferred),
		len(report.Errors),
		boolToInt(report.OK),
		report.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rebalance run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (r *Repository) Recent(limit int) ([]Run, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT run_id, wallet, profile, target_json, transfers,
		deferrals, errors, ok, duration_ms, created_at
		FROM rebalance_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rebalance runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var targetJSON string
		var ok int
		if err := rows.Scan(&run.RunID, &run.Wallet, &run.Profile, &targetJSON,
			&run.Transfers, &run.Deferrals, &run.Errors, &ok, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rebalance run: %w", err)
		}
		if err := json.Unmarshal([]byte(targetJSON), &run.Target); err != nil {
			r.log.Warn().Err(err).Str("run_id", run.RunID).Msg("malformed target allocation in history row")
		}
		run.OK = ok != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rebalance runs: %w", err)
	}
	return runs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
