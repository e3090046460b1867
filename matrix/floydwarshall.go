// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Dense APSP closure of the travel matrix with deterministic loop order.
//
// Contract:
//   - +Inf means "no path"; the diagonal is 0 (guaranteed by New/Set).

package matrix

import "math"

// Complete closes the matrix under multi-hop travel in place and returns the
// number of pairs whose distance improved.
//
// Loop order is fixed (k → i → j) and only strict improvements are written, so
// repeated runs on the same input produce identical buffers. The time buffer
// follows the distance-optimal path rather than being minimized on its own.
//
// Complexity: Time O(n³), extra space O(1).
func (m *Matrix) Complete() int {
	n := m.n
	dist, tm := m.dist, m.time

	var (
		k, i, j      int
		baseK, baseI int
		ik, kj, cand float64
		improved     int
	)
	for k = 0; k < n; k++ {
		baseK = k * n
		for i = 0; i < n; i++ {
			ik = dist[i*n+k]
			if math.IsInf(ik, 1) {
				continue // i cannot reach k
			}
			baseI = i * n
			for j = 0; j < n; j++ {
				kj = dist[baseK+j]
				if math.IsInf(kj, 1) {
					continue
				}
				cand = ik + kj
				if cand < dist[baseI+j] {
					dist[baseI+j] = cand
					tm[baseI+j] = tm[i*n+k] + tm[baseK+j]
					improved++
				}
			}
		}
	}

	return improved
}
