// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/dispatch"
)

// SaveRun stores a simulation summary and one row per request.
func (s *Store) SaveRun(ctx context.Context, res *dispatch.Result) error {
	summary := *res
	summary.Requests = nil
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, city, ratio, ride_sharing, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.RunID, res.City, ratioKey(res.Ratio), res.RideSharing, string(payload),
		s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO requests (run_id, request_id, origin, destination, status, created_at, deadline, completed_at, shared, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range res.Requests {
		var completed sql.NullFloat64
		if r.Status == dispatch.StatusCompleted {
			completed = sql.NullFloat64{Float64: r.CompletedAt, Valid: true}
		}
		_, err = stmt.ExecContext(ctx, res.RunID, r.ID, int(r.Origin), int(r.Destination), r.Status.String(),
			r.CreatedAt, r.Deadline, completed, r.Shared, r.Reason)
		if err != nil {
			return fmt.Errorf("insert request %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRun restores a run with its request rows in id order.
func (s *Store) LoadRun(ctx context.Context, runID string) (*dispatch.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT summary FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	var res dispatch.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, origin, destination, status, created_at, deadline, completed_at, shared, reason
		 FROM requests WHERE run_id = ? ORDER BY request_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         dispatch.Request
			origin    int
			dest      int
			status    string
			completed sql.NullFloat64
			reason    sql.NullString
		)
		if err := rows.Scan(&r.ID, &origin, &dest, &status, &r.CreatedAt, &r.Deadline, &completed, &r.Shared, &reason); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		r.Origin, r.Destination = core.HotspotID(origin), core.HotspotID(dest)
		if err := r.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, err
		}
		if completed.Valid {
			r.CompletedAt = completed.Float64
		}
		if reason.Valid {
			r.Reason = reason.String
		}
		res.Requests = append(res.Requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return &res, nil
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	RunID       string
	City        string
	RideSharing bool
	CreatedAt   time.Time
}

// ListRuns returns the stored runs of city, newest first.
func (s *Store) ListRuns(ctx context.Context, city string) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, city, ride_sharing, created_at FROM runs WHERE city = ? ORDER BY created_at DESC, run_id`, city)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var created string
		if err := rows.Scan(&rs.RunID, &rs.City, &rs.RideSharing, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if rs.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", rs.RunID, err)
		}
		out = append(out, rs)
	}

	return out, rows.Err()
}
