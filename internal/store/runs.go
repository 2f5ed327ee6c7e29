package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RunJob is one job outcome of a finished run, as persisted for the
// run-history listing.
type RunJob struct {
	RunID      string
	Kind       string
	Status     string
	Reason     string
	Current    int
	Total      int
	FinishedAt time.Time
}

// RecordRun persists all job outcomes of one run in a single transaction.
func (db *DB) RecordRun(jobs []RunJob) error {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin record run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, j := range jobs {
		_, err := tx.Exec(
			`INSERT INTO runs (run_id, kind, status, reason, current, total)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			j.RunID, j.Kind, j.Status, j.Reason, j.Current, j.Total,
		)
		if err != nil {
			return fmt.Errorf("record run job: %w", err)
		}
	}
	return tx.Commit()
}

// LastRun returns the job outcomes of the most recent run, or nil when no
// run has been recorded yet.
func (db *DB) LastRun() ([]RunJob, error) {
	var runID string
	err := db.QueryRow(`SELECT run_id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find last run: %w", err)
	}

	rows, err := db.Query(
		`SELECT run_id, kind, status, reason, current, total, finished_at
		 FROM runs WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load last run: %w", err)
	}
	defer rows.Close()

	var jobs []RunJob
	for rows.Next() {
		var j RunJob
		if err := rows.Scan(&j.RunID, &j.Kind, &j.Status, &j.Reason, &j.Current, &j.Total, &j.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
