// SPDX-License-Identifier: MIT

package network_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/matrix"
	"github.com/katalvlaran/quikdel/network"
)

func tractID(i int) string { return fmt.Sprintf("T%02d", i) }

// lineInput lays n tracts on the x axis, 1 unit apart, with travel only
// between neighbors. Every tract gets producers[i] producers (default 1) and
// consumers[i] consumers.
func lineInput(t *testing.T, n int, producers, consumers map[int]int) network.Input {
	t.Helper()
	in := network.Input{City: "line"}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = tractID(i)
		tr := core.CensusTract{ID: ids[i], Centroid: core.Point{X: float64(i)}}
		if i > 0 {
			tr.Bordering = append(tr.Bordering, tractID(i-1))
		}
		if i < n-1 {
			tr.Bordering = append(tr.Bordering, tractID(i+1))
		}
		in.Tracts = append(in.Tracts, tr)

		np, ok := producers[i]
		if !ok {
			np = 1
		}
		for k := 0; k < np; k++ {
			in.Producers = append(in.Producers, core.Site{
				ID: fmt.Sprintf("p%d-%d", i, k), TractID: ids[i], Location: core.Point{X: float64(i)},
			})
		}
		for k := 0; k < consumers[i]; k++ {
			in.Consumers = append(in.Consumers, core.Site{
				ID: fmt.Sprintf("c%d-%d", i, k), TractID: ids[i], Location: core.Point{X: float64(i)},
			})
		}
	}
	m, err := matrix.New(ids)
	require.NoError(t, err)
	for i := 0; i+1 < n; i++ {
		require.NoError(t, m.Set(ids[i], ids[i+1], core.Travel{Distance: 1, Time: 2}))
		require.NoError(t, m.Set(ids[i+1], ids[i], core.Travel{Distance: 1, Time: 2}))
	}
	in.Travel = m

	return in
}

func TestBuild_TenTractsRatioFive(t *testing.T) {
	in := lineInput(t, 10, map[int]int{2: 3}, map[int]int{7: 3})

	net, err := network.Build(context.Background(), in, network.WithRatio(5))
	require.NoError(t, err)

	assert.Equal(t, []core.HotspotID{2, 7}, net.SuperspotIDs())
	s2, ok := net.Superspot(2)
	require.True(t, ok)
	assert.Equal(t, []core.HotspotID{0, 1, 2, 3, 4}, s2.Members)
	s7, _ := net.Superspot(7)
	assert.Equal(t, []core.HotspotID{5, 6, 7, 8, 9}, s7.Members)
	assert.Equal(t, 8, net.Capacity)
	assert.InDelta(t, 2.0, s2.Centroid.X, 1e-9)

	for _, h := range net.Hotspots {
		assert.GreaterOrEqual(t, h.SES, 0.0)
		assert.LessOrEqual(t, h.SES, 1.0)
	}
	assert.Equal(t, core.HotspotID(7), net.ClusterOf(9))
	assert.True(t, net.IsSuperspot(7))
	assert.False(t, net.IsSuperspot(6))
	require.NoError(t, net.Validate())
}

func TestBuild_DoesNotMutateInputMatrix(t *testing.T) {
	in := lineInput(t, 4, nil, nil)
	before := in.Travel.Missing()

	_, err := network.Build(context.Background(), in, network.WithRatio(2))
	require.NoError(t, err)
	assert.Equal(t, before, in.Travel.Missing())

	_, ok := in.Travel.Travel(0, 3)
	assert.False(t, ok, "closure must run on a copy")
}

func TestBuild_UndersizedClusterIsMerged(t *testing.T) {
	in := lineInput(t, 5, map[int]int{3: 3, 4: 2}, nil)

	net, err := network.Build(context.Background(), in,
		network.WithRatio(2.5),
		network.WithCapacitySlack(2),
		network.WithSESWeights(network.SESWeights{Producers: 1}),
	)
	require.NoError(t, err)

	// 3 and 4 were selected; {4} was below MinChildren and folded into 3.
	assert.Equal(t, []core.HotspotID{3}, net.SuperspotIDs())
	s, _ := net.Superspot(3)
	assert.Equal(t, []core.HotspotID{0, 1, 2, 3, 4}, s.Members)
	assert.Equal(t, core.HotspotID(3), net.Hotspots[4].Cluster)
}

func TestBuild_DataErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty tract", func(t *testing.T) {
		in := lineInput(t, 4, map[int]int{1: 0}, nil)
		_, err := network.Build(ctx, in, network.WithRatio(2))
		var de *network.DataError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "T01", de.Ref)
		assert.ErrorIs(t, err, network.ErrData)
	})

	t.Run("unknown tract", func(t *testing.T) {
		in := lineInput(t, 4, nil, nil)
		in.Consumers = append(in.Consumers, core.Site{ID: "c", TractID: "nowhere"})
		_, err := network.Build(ctx, in, network.WithRatio(2))
		assert.ErrorIs(t, err, network.ErrData)
	})

	t.Run("single tract", func(t *testing.T) {
		in := lineInput(t, 1, nil, nil)
		_, err := network.Build(ctx, in)
		assert.ErrorIs(t, err, network.ErrData)
	})

	t.Run("disconnected hotspot", func(t *testing.T) {
		in := lineInput(t, 4, nil, nil)
		ids := append(in.Travel.IDs(), "T04")
		m, err := matrix.New(ids)
		require.NoError(t, err)
		for i := 0; i+1 < 4; i++ {
			require.NoError(t, m.Set(ids[i], ids[i+1], core.Travel{Distance: 1, Time: 1}))
		}
		in.Travel = m
		in.Tracts = append(in.Tracts, core.CensusTract{ID: "T04"})
		in.Producers = append(in.Producers, core.Site{ID: "p4", TractID: "T04"})

		_, err = network.Build(ctx, in, network.WithRatio(2))
		var de *network.DataError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "T03", de.Ref, "T03 has no outgoing travel")
	})

	t.Run("tract missing from matrix", func(t *testing.T) {
		in := lineInput(t, 3, nil, nil)
		in.Tracts = append(in.Tracts, core.CensusTract{ID: "T09"})
		in.Producers = append(in.Producers, core.Site{ID: "p9", TractID: "T09"})
		_, err := network.Build(ctx, in)
		assert.ErrorIs(t, err, network.ErrData)
	})
}

func TestBuild_BalanceErrorWhenSpacingStarvesSelection(t *testing.T) {
	in := lineInput(t, 10, nil, nil)

	// Nothing is 100 apart, so only one superspot survives: 1 × 8 < 10.
	_, err := network.Build(context.Background(), in,
		network.WithRatio(5), network.WithSpacingThreshold(100))
	var be *network.BalanceError
	require.ErrorAs(t, err, &be)
	assert.True(t, errors.Is(err, network.ErrBalance))
}

func TestBuild_BadOptions(t *testing.T) {
	in := lineInput(t, 4, nil, nil)
	for name, opt := range map[string]network.Option{
		"ratio":   network.WithRatio(0.5),
		"min":     network.WithMinChildren(0),
		"spacing": network.WithSpacingThreshold(-1),
		"slack":   network.WithCapacitySlack(0.9),
		"weights": network.WithSESWeights(network.SESWeights{}),
		"norm":    network.WithNormalization("rank"),
	} {
		_, err := network.Build(context.Background(), in, opt)
		assert.ErrorIs(t, err, network.ErrBadOption, name)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := network.Build(ctx, lineInput(t, 4, nil, nil), network.WithRatio(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_ZScoreKeepsScoresInUnitRange(t *testing.T) {
	in := lineInput(t, 6, map[int]int{0: 4, 5: 2}, map[int]int{3: 5})
	net, err := network.Build(context.Background(), in,
		network.WithRatio(3), network.WithNormalization(network.ZScore))
	require.NoError(t, err)
	for _, h := range net.Hotspots {
		assert.Greater(t, h.SES, 0.0)
		assert.Less(t, h.SES, 1.0)
	}
}

// TestBuild_InvariantsProperty checks partition, spacing and balance on random
// planar cities with a complete Euclidean travel matrix.
func TestBuild_InvariantsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 24).Draw(rt, "n")
		ratio := rapid.Float64Range(1, 6).Draw(rt, "ratio")
		minChildren := rapid.IntRange(1, 3).Draw(rt, "min")
		spacing := rapid.Float64Range(0, 30).Draw(rt, "spacing")

		in := network.Input{City: "rand"}
		ids := make([]string, n)
		pts := make([]core.Point, n)
		for i := 0; i < n; i++ {
			ids[i] = tractID(i)
			pts[i] = core.Point{
				X: rapid.Float64Range(0, 100).Draw(rt, fmt.Sprintf("x%d", i)),
				Y: rapid.Float64Range(0, 100).Draw(rt, fmt.Sprintf("y%d", i)),
			}
			in.Tracts = append(in.Tracts, core.CensusTract{ID: ids[i]})
			for k := rapid.IntRange(1, 4).Draw(rt, fmt.Sprintf("p%d", i)); k > 0; k-- {
				in.Producers = append(in.Producers, core.Site{ID: fmt.Sprintf("p%d-%d", i, k), TractID: ids[i], Location: pts[i]})
			}
		}
		m, err := matrix.New(ids)
		if err != nil {
			rt.Fatal(err)
		}
		for i := range ids {
			for j := range ids {
				d := pts[i].Dist(pts[j])
				if err := m.Set(ids[i], ids[j], core.Travel{Distance: d, Time: d}); err != nil {
					rt.Fatal(err)
				}
			}
		}
		in.Travel = m

		net, err := network.Build(context.Background(), in,
			network.WithRatio(ratio), network.WithMinChildren(minChildren), network.WithSpacingThreshold(spacing))
		if err != nil {
			if !errors.Is(err, network.ErrBalance) {
				rt.Fatalf("unexpected error: %v", err)
			}
			return
		}

		owner := make(map[core.HotspotID]core.HotspotID)
		for _, s := range net.Superspots {
			if len(s.Members) < minChildren || len(s.Members) > net.Capacity {
				rt.Fatalf("cluster %d size %d outside [%d,%d]", s.ID, len(s.Members), minChildren, net.Capacity)
			}
			for _, mID := range s.Members {
				if prev, dup := owner[mID]; dup {
					rt.Fatalf("hotspot %d in clusters %d and %d", mID, prev, s.ID)
				}
				owner[mID] = s.ID
			}
			if owner[s.ID] != s.ID {
				rt.Fatalf("superspot %d not in its own cluster", s.ID)
			}
		}
		if len(owner) != n {
			rt.Fatalf("partition covers %d of %d hotspots", len(owner), n)
		}
		for i, a := range net.Superspots {
			for _, b := range net.Superspots[i+1:] {
				if core.Symmetric(net.Oracle(), a.ID, b.ID) < spacing {
					rt.Fatalf("superspots %d and %d closer than %v", a.ID, b.ID, spacing)
				}
			}
		}
	})
}
