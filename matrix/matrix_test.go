// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := matrix.New(nil)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.New([]string{"a", "b", "a"})
	assert.ErrorIs(t, err, matrix.ErrDuplicateID)

	m, err := matrix.New([]string{"a", "b"})
	require.NoError(t, err)
	d, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Distance)
	d, _ = m.At(0, 1)
	assert.True(t, math.IsInf(d.Distance, 1))
	assert.Equal(t, 2, m.Missing())

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set("a", "z", core.Travel{}), matrix.ErrUnknownID)
	assert.ErrorIs(t, m.Set("a", "b", core.Travel{Distance: -1}), matrix.ErrBadValue)
}

func TestComplete_ClosesMissingPairsAlongShortestPath(t *testing.T) {
	// a→b 2 (time 10), b→c 3 (time 1), a→c 10 (time 1); a→c via b is shorter.
	m, err := matrix.New([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.NoError(t, m.Set("a", "b", core.Travel{Distance: 2, Time: 10}))
	require.NoError(t, m.Set("b", "c", core.Travel{Distance: 3, Time: 1}))
	require.NoError(t, m.Set("a", "c", core.Travel{Distance: 10, Time: 1}))

	improved := m.Complete()
	assert.Equal(t, 1, improved)

	ac, err := m.At(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, ac.Distance)
	assert.Equal(t, 11.0, ac.Time, "time follows the distance-optimal path")

	// Reverse direction stays unreachable: data is directed.
	_, ok := m.Travel(2, 0)
	assert.False(t, ok)

	// Idempotent.
	assert.Equal(t, 0, m.Complete())
}

func TestView_Reindexes(t *testing.T) {
	m, err := matrix.New([]string{"x", "y"})
	require.NoError(t, err)
	require.NoError(t, m.Set("y", "x", core.Travel{Distance: 7, Time: 70}))

	v, err := m.View([]string{"y", "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	tr, ok := v.Travel(0, 1)
	require.True(t, ok)
	assert.Equal(t, 7.0, tr.Distance)

	_, ok = v.Travel(0, 5)
	assert.False(t, ok)

	_, err = m.View([]string{"q"})
	assert.ErrorIs(t, err, matrix.ErrUnknownID)

	var _ core.DistanceOracle = v
	var _ core.DistanceOracle = m
}

func TestClone_IsIndependent(t *testing.T) {
	m, err := matrix.New([]string{"a", "b"})
	require.NoError(t, err)
	c := m.Clone()
	require.NoError(t, c.Set("a", "b", core.Travel{Distance: 1, Time: 1}))
	_, ok := m.Travel(0, 1)
	assert.False(t, ok)
	_, ok = c.Travel(0, 1)
	assert.True(t, ok)
}

func TestEdges_RebuildsSameMatrix(t *testing.T) {
	m, err := matrix.FromEdges([]string{"a", "b", "c"}, []matrix.Edge{
		{From: "a", To: "b", Distance: 1, Time: 2},
		{From: "b", To: "c", Distance: 3, Time: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, m.Missing())

	edges := m.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, matrix.Edge{From: "b", To: "c", Distance: 3, Time: 4}, edges[1])

	again, err := matrix.FromEdges(m.IDs(), edges)
	require.NoError(t, err)
	assert.Equal(t, m.Edges(), again.Edges())

	_, err = matrix.FromEdges([]string{"a"}, []matrix.Edge{{From: "a", To: "z"}})
	assert.ErrorIs(t, err, matrix.ErrUnknownID)
}
