// SPDX-License-Identifier: MIT

// Package core defines the graph primitives shared by every stage of the
// delivery engine: census tracts, producer/consumer sites, hotspots, the
// read-only travel oracle, and a small thread-safe locality Graph.
//
// Identity model:
//
//   - A HotspotID is a dense index 0..H-1 assigned in ascending tract-ID order,
//     so the same city input always yields the same ids.
//   - A superspot is not a separate entity. It is a hotspot that carries the
//     superspot role inside a built network (see network.Network.IsSuperspot).
//
// Oracle contract:
//
//	type DistanceOracle interface {
//	    Len() int
//	    Travel(from, to HotspotID) (Travel, bool)
//	}
//
//   - Travel reports ok=false for unknown ids or unreachable pairs.
//   - Implementations are shared by reference and must never be mutated while a
//     network, a trainer, or a simulator holds them.
//
// Locality graph:
//
//	Graph is undirected and weighted with float64 costs. It backs the action
//	sets of the decision processes: AddEdge mirrors the edge, NeighborIDs returns
//	ids sorted ascending, and Reachable runs a breadth-first search.
//
//	    h0───h1
//	    │     │
//	    h3───h2
//
// Concurrency:
//
//   - Graph guards its adjacency with a sync.RWMutex, so concurrent readers are
//     safe while a writer builds it. Value types (Point, Hotspot, Travel) are
//     plain data.
//
// Errors:
//
//	ErrUnknownHotspot – an id outside the graph or oracle range.
//	ErrLoopNotAllowed – AddEdge(v, v).
//	ErrBadWeight      – negative, NaN, or infinite edge cost.
package core
