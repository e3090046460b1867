// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/katalvlaran/quikdel/matrix"
	"github.com/katalvlaran/quikdel/network"
)

// SaveNetwork stores net together with the raw travel matrix it was built
// from, replacing any network with the same (city, ratio). Fragments of a
// replaced network are dropped.
func (s *Store) SaveNetwork(ctx context.Context, net *network.Network, travel *matrix.Matrix) error {
	if net == nil || travel == nil {
		return fmt.Errorf("save network: %w", network.ErrNoOracle)
	}
	payload, err := json.Marshal(net)
	if err != nil {
		return fmt.Errorf("marshal network: %w", err)
	}
	edges, err := json.Marshal(travelJSON{IDs: travel.IDs(), Edges: travel.Edges()})
	if err != nil {
		return fmt.Errorf("marshal travel: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	key := ratioKey(net.Ratio)
	if _, err = tx.ExecContext(ctx, `DELETE FROM fragments WHERE city = ? AND ratio = ?`, net.City, key); err != nil {
		return fmt.Errorf("drop fragments: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO networks (city, ratio, payload, travel, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(city, ratio) DO UPDATE SET
		   payload = excluded.payload, travel = excluded.travel, created_at = excluded.created_at`,
		net.City, key, string(payload), string(edges), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert network: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type travelJSON struct {
	IDs   []string      `json:"ids"`
	Edges []matrix.Edge `json:"edges"`
}

// LoadNetwork restores the network stored under (city, ratio), re-attaches a
// closed oracle over its travel matrix and validates it.
func (s *Store) LoadNetwork(ctx context.Context, city string, ratio float64) (*network.Network, error) {
	var payload, travel string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, travel FROM networks WHERE city = ? AND ratio = ?`, city, ratioKey(ratio),
	).Scan(&payload, &travel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: network %s@%s", ErrNotFound, city, ratioKey(ratio))
	}
	if err != nil {
		return nil, fmt.Errorf("get network: %w", err)
	}

	var net network.Network
	if err := json.Unmarshal([]byte(payload), &net); err != nil {
		return nil, fmt.Errorf("unmarshal network: %w", err)
	}
	var tj travelJSON
	if err := json.Unmarshal([]byte(travel), &tj); err != nil {
		return nil, fmt.Errorf("unmarshal travel: %w", err)
	}
	m, err := matrix.FromEdges(tj.IDs, tj.Edges)
	if err != nil {
		return nil, fmt.Errorf("rebuild travel: %w", err)
	}
	oracle, err := network.ClosedOracle(m, net.Hotspots)
	if err != nil {
		return nil, err
	}
	if err := net.Attach(oracle); err != nil {
		return nil, err
	}
	if err := net.Validate(); err != nil {
		return nil, fmt.Errorf("stored network %s: %w", city, err)
	}

	return &net, nil
}
