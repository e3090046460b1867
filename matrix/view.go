// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"

	"github.com/katalvlaran/quikdel/core"
)

// View is a read-only core.DistanceOracle that maps HotspotID i to the matrix
// row of order[i]. It shares the matrix buffers, so the matrix must not be
// modified after a View is taken.
type View struct {
	m    *Matrix
	rows []int
}

// View builds a re-indexed oracle over the given id order.
// Returns ErrUnknownID if any id is missing from the matrix.
// Complexity: O(len(order)).
func (m *Matrix) View(order []string) (*View, error) {
	rows := make([]int, len(order))
	for i, id := range order {
		r, ok := m.index[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownID, id)
		}
		rows[i] = r
	}

	return &View{m: m, rows: rows}, nil
}

// Len implements core.DistanceOracle.
func (v *View) Len() int { return len(v.rows) }

// Travel implements core.DistanceOracle.
func (v *View) Travel(from, to core.HotspotID) (core.Travel, bool) {
	if from < 0 || int(from) >= len(v.rows) || to < 0 || int(to) >= len(v.rows) {
		return core.Travel{}, false
	}

	return v.m.Travel(core.HotspotID(v.rows[from]), core.HotspotID(v.rows[to]))
}
