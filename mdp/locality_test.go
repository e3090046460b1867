// SPDX-License-Identifier: MIT

package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/matrix"
)

// twoPairs places a, b at x=0,1 and c, d at x=10,11 with complete travel.
func twoPairs(t *testing.T) *matrix.Matrix {
	t.Helper()
	xs := []float64{0, 1, 10, 11}
	ids := []string{"a", "b", "c", "d"}
	m, err := matrix.New(ids)
	require.NoError(t, err)
	for i := range ids {
		for j := range ids {
			d := xs[i] - xs[j]
			if d < 0 {
				d = -d
			}
			require.NoError(t, m.Set(ids[i], ids[j], core.Travel{Distance: d, Time: d}))
		}
	}

	return m
}

func TestNewLocality_RepairsSplitGraph(t *testing.T) {
	l, linked, err := newLocality(TierSuperspot, core.NoHotspot, []core.HotspotID{3, 2, 1, 0}, 1, twoPairs(t), CostDistance, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, linked, "one bridge joins the pairs")
	assert.True(t, l.Connected())
	assert.Equal(t, []core.HotspotID{0, 1, 2, 3}, l.Nodes())
	assert.Equal(t, []core.HotspotID{0, 2}, l.Neighbors(1))
	assert.Equal(t, 11.0, l.Normalizer())
}

func TestNewLocality_NoPeersKeepsUnitNormalizer(t *testing.T) {
	l, linked, err := newLocality(TierHotspot, 0, []core.HotspotID{0}, 4, twoPairs(t), CostDistance, 10)
	require.NoError(t, err)
	assert.Zero(t, linked)
	assert.Equal(t, 1.0, l.Normalizer())
	assert.Empty(t, l.Neighbors(0))
}
