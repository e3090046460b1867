// SPDX-License-Identifier: MIT

package app_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/config"
	"github.com/katalvlaran/quikdel/internal/app"
	"github.com/katalvlaran/quikdel/internal/metrics"
	"github.com/katalvlaran/quikdel/internal/testcity"
	"github.com/katalvlaran/quikdel/store"
)

func pipeline(t *testing.T) *app.Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Network.Ratio = 5
	cfg.Training.Episodes = 200
	cfg.Simulation.TotalDeliveries = 20

	st, err := store.NewStore(filepath.Join(t.TempDir(), "quikdel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	m, err := metrics.NewCollector("quikdel", nil, zap.NewNop())
	require.NoError(t, err)

	return &app.Pipeline{Config: cfg, Logger: zap.NewNop(), Store: st, Metrics: m}
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	p := pipeline(t)
	in, err := testcity.Line(10, map[int]int{2: 3}, map[int]int{7: 3})
	require.NoError(t, err)

	net, err := p.Build(ctx, in)
	require.NoError(t, err)
	pol, err := p.Train(ctx, net)
	require.NoError(t, err)

	rep, err := p.Simulate(ctx, net, pol, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Hotspots)
	assert.Equal(t, 2, rep.Superspots)
	require.NotNil(t, rep.Baseline)
	require.NotNil(t, rep.Comparison)
	assert.Equal(t, 20, rep.Result.Total)
	assert.Equal(t, rep.Result.Total, rep.Result.Completed+rep.Result.Expired)
	assert.NotEmpty(t, rep.Metrics)
	assert.Positive(t, rep.Metrics["quikdel_training_episodes_total{tier=hotspot}"])
	// the shared run and the baseline are counted apart
	for _, mode := range []string{"true", "false"} {
		key := "quikdel_requests_total{ride_sharing=" + mode + "}"
		terminal := rep.Metrics[key+"{status=completed}"] + rep.Metrics[key+"{status=expired}"]
		assert.Equal(t, float64(rep.Result.Total), terminal, mode)
	}

	stored, err := p.Store.LoadRun(ctx, rep.Result.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Result.Completed, stored.Completed)

	// a second process picks the artifacts up from the store
	net2, pol2, err := p.Load(ctx, net.City)
	require.NoError(t, err)
	assert.Equal(t, net.Superspots, net2.Superspots)
	assert.Equal(t, pol.Entries(), pol2.Entries())

	reqs, err := app.DecodeRequests(strings.NewReader(`[{"id": 0, "origin": 0, "destination": 9, "deadline": 200}]`))
	require.NoError(t, err)
	rep2, err := p.Simulate(ctx, net2, pol2, reqs, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rep2.Result.Total)
	assert.Nil(t, rep2.Baseline)
}

func TestPipeline_LoadWithoutStore(t *testing.T) {
	p := &app.Pipeline{Config: config.DefaultConfig()}
	_, _, err := p.Load(context.Background(), "line")
	assert.ErrorIs(t, err, app.ErrNoStore)
}

func TestDecodeRequests(t *testing.T) {
	reqs, err := app.DecodeRequests(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, reqs)
	assert.NotNil(t, reqs)

	_, err = app.DecodeRequests(strings.NewReader(`[{"status": "lost"}]`))
	assert.Error(t, err)
}
