// SPDX-License-Identifier: MIT
// File: graph.go
// Role: undirected, weighted locality graph over hotspot ids.
//
// Determinism:
//   - Vertices() and NeighborIDs() return ids sorted ascending.
//
// Concurrency:
//   - Vertex set and adjacency are protected by a single RWMutex.

package core

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Graph is an undirected weighted graph keyed by HotspotID.
//
// adjacency[u][v] = cost; every edge is stored in both directions.
type Graph struct {
	mu        sync.RWMutex
	adjacency map[HotspotID]map[HotspotID]float64
	edges     int
}

// NewGraph returns an empty Graph.
// Complexity: O(1).
func NewGraph() *Graph {
	return &Graph{adjacency: make(map[HotspotID]map[HotspotID]float64)}
}

// AddVertex inserts id if missing (idempotent).
// Complexity: O(1) amortized.
func (g *Graph) AddVertex(id HotspotID) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownHotspot, id)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.adjacency[id]; !ok {
		g.adjacency[id] = make(map[HotspotID]float64)
	}

	return nil
}

// HasVertex reports whether id is present.
func (g *Graph) HasVertex(id HotspotID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.adjacency[id]

	return ok
}

// AddEdge connects u and v with the given cost, adding missing vertices.
// Re-adding an existing edge keeps the smaller cost.
//
// Implementation:
//   - Stage 1: Validate endpoints and cost (ErrLoopNotAllowed, ErrBadWeight).
//   - Stage 2: Under the write lock, bootstrap both buckets and mirror the edge.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(u, v HotspotID, cost float64) error {
	// 1) Validate.
	if u < 0 || v < 0 {
		return fmt.Errorf("%w: edge %d-%d", ErrUnknownHotspot, u, v)
	}
	if u == v {
		return fmt.Errorf("%w: %d", ErrLoopNotAllowed, u)
	}
	if cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		return fmt.Errorf("%w: edge %d-%d cost=%v", ErrBadWeight, u, v, cost)
	}

	// 2) Mirror into both adjacency buckets.
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range [2]HotspotID{u, v} {
		if _, ok := g.adjacency[id]; !ok {
			g.adjacency[id] = make(map[HotspotID]float64)
		}
	}
	if old, ok := g.adjacency[u][v]; ok {
		if cost < old {
			g.adjacency[u][v] = cost
			g.adjacency[v][u] = cost
		}
		return nil
	}
	g.adjacency[u][v] = cost
	g.adjacency[v][u] = cost
	g.edges++

	return nil
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v HotspotID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.adjacency[u][v]

	return ok
}

// Cost returns the edge cost between u and v.
func (g *Graph) Cost(u, v HotspotID) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.adjacency[u][v]

	return c, ok
}

// NeighborIDs returns the neighbors of id sorted ascending.
// Complexity: O(d log d).
func (g *Graph) NeighborIDs(id HotspotID) ([]HotspotID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nbrs, ok := g.adjacency[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHotspot, id)
	}
	out := make([]HotspotID, 0, len(nbrs))
	for v := range nbrs {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}

// Vertices returns all vertex ids sorted ascending.
// Complexity: O(V log V).
func (g *Graph) Vertices() []HotspotID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]HotspotID, 0, len(g.adjacency))
	for id := range g.adjacency {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// VertexCount returns |V|.
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.adjacency)
}

// EdgeCount returns |E| counting each undirected edge once.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.edges
}
