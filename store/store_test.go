// SPDX-License-Identifier: MIT

package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/quikdel/dispatch"
	"github.com/katalvlaran/quikdel/internal/testcity"
	"github.com/katalvlaran/quikdel/mdp"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
	"github.com/katalvlaran/quikdel/store"
)

func tempDB(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func lineNetwork(t *testing.T) (*network.Network, network.Input) {
	t.Helper()
	net, in, err := testcity.LineNetwork(context.Background())
	require.NoError(t, err)
	return net, in
}

func TestNetwork_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := tempDB(t)
	net, in := lineNetwork(t)

	require.NoError(t, s.SaveNetwork(ctx, net, in.Travel))
	got, err := s.LoadNetwork(ctx, net.City, net.Ratio)
	require.NoError(t, err)

	assert.Equal(t, net.Hotspots, got.Hotspots)
	assert.Equal(t, net.Superspots, got.Superspots)
	assert.Equal(t, net.Capacity, got.Capacity)
	require.NotNil(t, got.Oracle())
	tr, ok := got.Oracle().Travel(0, 9)
	require.True(t, ok)
	assert.InDelta(t, 9.0, tr.Distance, 1e-9)

	// saving again replaces the row
	require.NoError(t, s.SaveNetwork(ctx, net, in.Travel))

	_, err = s.LoadNetwork(ctx, net.City, 7)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPolicies_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := tempDB(t)
	net, in := lineNetwork(t)
	require.NoError(t, s.SaveNetwork(ctx, net, in.Travel))

	set, err := mdp.Formulate(net)
	require.NoError(t, err)
	pol, err := qlearn.TrainAll(ctx, set, qlearn.WithEpisodes(50))
	require.NoError(t, err)

	require.NoError(t, s.SavePolicies(ctx, net.City, net.Ratio, pol))
	got, err := s.LoadPolicies(ctx, net.City, net.Ratio)
	require.NoError(t, err)

	require.Len(t, got.All(), len(pol.All()))
	for i, f := range pol.All() {
		g := got.All()[i]
		assert.Equal(t, f.Tier(), g.Tier())
		assert.Equal(t, f.Agent(), g.Agent())
		assert.Equal(t, f.Owner(), g.Owner())
		assert.Equal(t, f.Entries(), g.Entries())
	}

	_, err = s.LoadPolicies(ctx, "elsewhere", net.Ratio)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPolicies_RequireNetwork(t *testing.T) {
	s := tempDB(t)
	pol := qlearn.NewPolicies()
	pol.Add(qlearn.NewTable(0, mdp.TierHotspot, 2).Freeze())

	err := s.SavePolicies(context.Background(), "nowhere", 5, pol)
	assert.Error(t, err)
}

func TestNetwork_ReplacingDropsPolicies(t *testing.T) {
	ctx := context.Background()
	s := tempDB(t)
	net, in := lineNetwork(t)
	require.NoError(t, s.SaveNetwork(ctx, net, in.Travel))

	pol := qlearn.NewPolicies()
	tab := qlearn.NewTable(0, mdp.TierHotspot, 2)
	tab.Update(1, 1, 1, 1)
	pol.Add(tab.Freeze())
	require.NoError(t, s.SavePolicies(ctx, net.City, net.Ratio, pol))

	require.NoError(t, s.SaveNetwork(ctx, net, in.Travel))
	_, err := s.LoadPolicies(ctx, net.City, net.Ratio)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := tempDB(t)

	res := &dispatch.Result{
		RunID: "2f1c4d0e-0000-4000-8000-000000000001", City: "line", Ratio: 5, RideSharing: true,
		Total: 2, Completed: 1, Expired: 1, SharedRequests: 0, SuccessRate: 0.5,
		TotalDistance: 9, AvgDeliveryTime: 18, Couriers: 2, Duration: 19,
		Requests: []dispatch.Request{
			{ID: 0, Origin: 0, Destination: 9, Deadline: 100, Status: dispatch.StatusCompleted, CompletedAt: 18},
			{ID: 1, Origin: 3, Destination: 8, CreatedAt: 1.5, Deadline: 4, Status: dispatch.StatusExpired, Reason: "deadline elapsed"},
		},
	}
	require.NoError(t, s.SaveRun(ctx, res))

	got, err := s.LoadRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res, got)

	runs, err := s.ListRuns(ctx, "line")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
	assert.True(t, runs[0].RideSharing)

	assert.Error(t, s.SaveRun(ctx, res), "run ids are unique")

	_, err = s.LoadRun(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
