// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quikdel/core"
)

// Edge is one directed travel record in list form.
type Edge struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

// Edges lists every finite off-diagonal entry in row-major order.
// Complexity: O(n²).
func (m *Matrix) Edges() []Edge {
	var out []Edge
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			k := i*m.n + j
			if i == j || math.IsInf(m.dist[k], 1) || math.IsInf(m.time[k], 1) {
				continue
			}
			out = append(out, Edge{From: m.ids[i], To: m.ids[j], Distance: m.dist[k], Time: m.time[k]})
		}
	}

	return out
}

// FromEdges builds a matrix over ids and records every edge.
// Errors: those of New and Set, wrapped with the offending edge index.
func FromEdges(ids []string, edges []Edge) (*Matrix, error) {
	m, err := New(ids)
	if err != nil {
		return nil, err
	}
	for i, e := range edges {
		if err = m.Set(e.From, e.To, core.Travel{Distance: e.Distance, Time: e.Time}); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}

	return m, nil
}
