// SPDX-License-Identifier: MIT

// Package store persists built networks, trained policy fragments and
// simulation runs in SQLite.
//
// Networks are keyed by (city, ratio), fragments by (city, ratio, tier,
// agent_id) and runs by a uuid. Payloads are JSON text columns.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a keyed artifact does not exist.
var ErrNotFound = errors.New("store: not found")

// timeLayout is fixed width so created_at columns sort chronologically as
// text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS networks (
	city        TEXT NOT NULL,
	ratio       TEXT NOT NULL,
	payload     TEXT NOT NULL,
	travel      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (city, ratio)
);

CREATE TABLE IF NOT EXISTS fragments (
	city        TEXT NOT NULL,
	ratio       TEXT NOT NULL,
	tier        TEXT NOT NULL,
	agent_id    INTEGER NOT NULL,
	owner_id    INTEGER NOT NULL,
	entries     INTEGER NOT NULL,
	payload     TEXT NOT NULL,
	PRIMARY KEY (city, ratio, tier, agent_id),
	FOREIGN KEY (city, ratio) REFERENCES networks(city, ratio) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	city         TEXT NOT NULL,
	ratio        TEXT NOT NULL,
	ride_sharing INTEGER NOT NULL,
	summary      TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
	run_id       TEXT NOT NULL,
	request_id   INTEGER NOT NULL,
	origin       INTEGER NOT NULL,
	destination  INTEGER NOT NULL,
	status       TEXT NOT NULL,
	created_at   REAL NOT NULL,
	deadline     REAL NOT NULL,
	completed_at REAL,
	shared       INTEGER NOT NULL,
	reason       TEXT,
	PRIMARY KEY (run_id, request_id),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`

// Store is a SQLite-backed artifact store. It is safe for concurrent use to
// the extent database/sql is.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the database at dbPath and applies the schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// ratioKey renders a ratio as its shortest exact decimal form so that equal
// float64 values always produce the same key.
func ratioKey(r float64) string {
	return strconv.FormatFloat(r, 'g', -1, 64)
}
