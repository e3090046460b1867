// SPDX-License-Identifier: MIT

// Package matrix stores the pairwise travel matrix handed over by the data
// extraction step and turns it into a core.DistanceOracle.
//
// Storage:
//
//   - Two row-major flat buffers (distance, time) of length n*n, indexed by the
//     position of each stable id in the constructor's id list.
//   - Missing pairs hold +Inf; the diagonal is always 0.
//
// Closure:
//
//	Complete runs Floyd–Warshall in place with a fixed k → i → j loop order.
//	A pair is relaxed only on a strict distance improvement, and the travel
//	time of the winning path is carried along with it, so time always matches
//	the distance-shortest route.
//
// Views:
//
//	View(order) re-indexes the matrix so that HotspotID i maps to order[i].
//	Views share the backing buffers and are read-only.
//
// Errors:
//
//	ErrBadShape    – empty id list.
//	ErrDuplicateID – the same id appears twice.
//	ErrUnknownID   – a lookup or Set referenced an id not in the index.
//	ErrOutOfRange  – an index outside 0..n-1.
//	ErrBadValue    – negative or NaN travel cost.
//
// Complexity: Complete is O(n³) time and O(1) extra space; lookups are O(1).
package matrix
