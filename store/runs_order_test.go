// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/quikdel/dispatch"
)

func TestListRuns_NewestFirstAcrossSubSecondPrecision(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(filepath.Join(t.TempDir(), "order.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	for _, run := range []struct {
		id string
		at time.Time
	}{
		{"older", base.Add(100 * time.Millisecond)},
		{"newer", base.Add(120 * time.Millisecond)},
		{"newest", base.Add(time.Second)},
	} {
		s.now = func() time.Time { return run.at }
		require.NoError(t, s.SaveRun(ctx, &dispatch.Result{RunID: run.id, City: "line", Ratio: 5}))
	}

	runs, err := s.ListRuns(ctx, "line")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "newest", runs[0].RunID)
	assert.Equal(t, "newer", runs[1].RunID)
	assert.Equal(t, "older", runs[2].RunID)
	assert.True(t, runs[1].CreatedAt.Equal(base.Add(120*time.Millisecond)))
}

func TestListRuns_BadTimestamp(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(filepath.Join(t.TempDir(), "bad.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, city, ratio, ride_sharing, summary, created_at) VALUES ('r', 'line', '5', 0, '{}', 'yesterday')`)
	require.NoError(t, err)

	_, err = s.ListRuns(ctx, "line")
	assert.Error(t, err)
}
