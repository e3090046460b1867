// SPDX-License-Identifier: MIT

package core

import (
	"fmt"
	"math"
)

// Reachable runs a breadth-first search from start and returns the visit order.
// Neighbors are expanded in ascending id order, so the result is deterministic.
//
// Complexity: O(V + E log d) because NeighborIDs sorts each bucket.
func (g *Graph) Reachable(start HotspotID) ([]HotspotID, error) {
	if !g.HasVertex(start) {
		return nil, fmt.Errorf("%w: start %d", ErrUnknownHotspot, start)
	}

	visited := map[HotspotID]bool{start: true}
	queue := []HotspotID{start}
	order := make([]HotspotID, 0, g.VertexCount())
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)

		nbrs, err := g.NeighborIDs(u)
		if err != nil {
			return nil, err
		}
		for _, v := range nbrs {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}

	return order, nil
}

// Connect makes g connected by repeatedly linking the closest pair between the
// component reachable from root and the remaining vertices. cost supplies the
// weight of candidate links; pairs with +Inf cost are never linked.
//
// Implementation:
//   - Stage 1: BFS from root to collect the reached set.
//   - Stage 2: Scan reached (BFS order) × unreached (ascending) for the cheapest finite link.
//   - Stage 3: Add the link and repeat until nothing is unreached or no finite link exists.
//
// Returns the number of links added. Vertices that cannot be linked at finite
// cost stay disconnected; callers decide whether that is fatal.
// Complexity: O(V² · links) in the worst case; locality graphs are small.
func (g *Graph) Connect(root HotspotID, cost func(a, b HotspotID) float64) (int, error) {
	added := 0
	for {
		// 1) Reached set.
		order, err := g.Reachable(root)
		if err != nil {
			return added, err
		}
		if len(order) == g.VertexCount() {
			return added, nil
		}
		reached := make(map[HotspotID]bool, len(order))
		for _, id := range order {
			reached[id] = true
		}

		// 2) Cheapest link across the cut.
		all := g.Vertices()
		bestA, bestB, best := NoHotspot, NoHotspot, math.Inf(1)
		for _, a := range order {
			for _, b := range all {
				if reached[b] {
					continue
				}
				if c := cost(a, b); c < best {
					bestA, bestB, best = a, b, c
				}
			}
		}
		if bestA == NoHotspot {
			return added, nil
		}

		// 3) Link and retry.
		if err = g.AddEdge(bestA, bestB, best); err != nil {
			return added, err
		}
		added++
	}
}
