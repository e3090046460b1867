// SPDX-License-Identifier: MIT
// Package core_test verifies locality-graph contracts: mirroring, sorted
// enumeration, BFS order and the Connect repair step.

package core_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/katalvlaran/quikdel/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square builds h0-h1-h2-h3-h0 with unit costs.
func square(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()
	require.NoError(t, g.AddEdge(0, 1, 1))
	require.NoError(t, g.AddEdge(1, 2, 1))
	require.NoError(t, g.AddEdge(2, 3, 1))
	require.NoError(t, g.AddEdge(3, 0, 1))

	return g
}

func TestGraph_AddEdgeMirrorsAndValidates(t *testing.T) {
	g := core.NewGraph()

	require.NoError(t, g.AddEdge(2, 5, 3.5))
	assert.True(t, g.HasEdge(5, 2), "undirected edge must be mirrored")
	c, ok := g.Cost(5, 2)
	assert.True(t, ok)
	assert.Equal(t, 3.5, c)

	// Cheaper re-add lowers the cost but does not add a second edge.
	require.NoError(t, g.AddEdge(5, 2, 1.0))
	c, _ = g.Cost(2, 5)
	assert.Equal(t, 1.0, c)
	assert.Equal(t, 1, g.EdgeCount())

	assert.ErrorIs(t, g.AddEdge(1, 1, 0), core.ErrLoopNotAllowed)
	assert.ErrorIs(t, g.AddEdge(1, 2, -1), core.ErrBadWeight)
	assert.ErrorIs(t, g.AddEdge(1, 2, math.Inf(1)), core.ErrBadWeight)
	assert.ErrorIs(t, g.AddEdge(-1, 2, 1), core.ErrUnknownHotspot)
}

func TestGraph_SortedEnumeration(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.AddEdge(9, 1, 1))
	require.NoError(t, g.AddEdge(9, 4, 1))
	require.NoError(t, g.AddVertex(7))

	assert.Equal(t, []core.HotspotID{1, 4, 7, 9}, g.Vertices())
	nbrs, err := g.NeighborIDs(9)
	require.NoError(t, err)
	assert.Equal(t, []core.HotspotID{1, 4}, nbrs)

	_, err = g.NeighborIDs(42)
	assert.True(t, errors.Is(err, core.ErrUnknownHotspot))
}

func TestGraph_ReachableBFSOrder(t *testing.T) {
	g := square(t)
	require.NoError(t, g.AddVertex(8))

	order, err := g.Reachable(0)
	require.NoError(t, err)
	assert.Equal(t, []core.HotspotID{0, 1, 3, 2}, order)

	_, err = g.Reachable(99)
	assert.ErrorIs(t, err, core.ErrUnknownHotspot)
}

func TestGraph_ConnectLinksCheapestAcrossCut(t *testing.T) {
	g := square(t)
	require.NoError(t, g.AddEdge(10, 11, 1))
	require.NoError(t, g.AddVertex(20))

	cost := func(a, b core.HotspotID) float64 {
		if b == 20 {
			return math.Inf(1)
		}
		return math.Abs(float64(a - b))
	}
	added, err := g.Connect(0, cost)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "one link joins {10,11}; 20 has no finite link")
	assert.True(t, g.HasEdge(3, 10), "3→10 is the cheapest cut edge")

	order, err := g.Reachable(0)
	require.NoError(t, err)
	assert.Len(t, order, 6)
}

func TestGraph_ConcurrentReaders(t *testing.T) {
	g := square(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.NeighborIDs(0)
			_, _ = g.Reachable(2)
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, g.EdgeCount())
}

func TestWeightedCentroidAndTravel(t *testing.T) {
	p, ok := core.WeightedCentroid([]core.Site{
		{Location: core.Point{X: 0, Y: 0}, Weight: 3},
		{Location: core.Point{X: 4, Y: 0}}, // weight defaults to 1
	})
	require.True(t, ok)
	assert.InDelta(t, 1.0, p.X, 1e-12)
	assert.InDelta(t, 0.0, p.Y, 1e-12)

	_, ok = core.WeightedCentroid(nil)
	assert.False(t, ok)

	assert.True(t, core.Travel{Distance: 1, Time: 2}.Finite())
	assert.False(t, core.Travel{Distance: math.Inf(1)}.Finite())
	assert.Equal(t, 5.0, core.Point{}.Dist(core.Point{X: 3, Y: 4}))
}
