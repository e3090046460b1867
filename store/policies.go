// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/katalvlaran/quikdel/qlearn"
)

// SavePolicies replaces every fragment stored for (city, ratio). The network
// must be saved first.
func (s *Store) SavePolicies(ctx context.Context, city string, ratio float64, pol *qlearn.Policies) error {
	key := ratioKey(ratio)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM fragments WHERE city = ? AND ratio = ?`, city, key); err != nil {
		return fmt.Errorf("clear fragments: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fragments (city, ratio, tier, agent_id, owner_id, entries, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, f := range pol.All() {
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal fragment %s/%d: %w", f.Tier(), f.Agent(), err)
		}
		if _, err = stmt.ExecContext(ctx, city, key, f.Tier().String(), int(f.Agent()), int(f.Owner()), f.Len(), string(payload)); err != nil {
			return fmt.Errorf("insert fragment %s/%d: %w", f.Tier(), f.Agent(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadPolicies restores the fragments stored for (city, ratio). Convergence
// warnings are not persisted.
func (s *Store) LoadPolicies(ctx context.Context, city string, ratio float64) (*qlearn.Policies, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM fragments WHERE city = ? AND ratio = ? ORDER BY tier, agent_id`, city, ratioKey(ratio))
	if err != nil {
		return nil, fmt.Errorf("query fragments: %w", err)
	}
	defer rows.Close()

	pol := qlearn.NewPolicies()
	n := 0
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		f, err := qlearn.DecodeFragment([]byte(payload))
		if err != nil {
			return nil, err
		}
		pol.Add(f)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fragments: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: policies %s@%s", ErrNotFound, city, ratioKey(ratio))
	}

	return pol, nil
}
