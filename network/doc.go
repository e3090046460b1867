// SPDX-License-Identifier: MIT

// Package network builds the two-tier delivery network of one city run.
//
// Pipeline (Build):
//
//	tracts + sites ─► hotspots (weighted centroids)
//	travel matrix  ─► Floyd–Warshall closure ─► oracle by hotspot id
//	hotspots       ─► SES ─► spaced superspot selection
//	               ─► capacity-capped nearest assignment ─► undersized merge
//	               ─► frozen Network (validated)
//
// Superspot Eligibility Score:
//
//	SES(h) = wp·N(producers) + wc·N(consumers) + wb·N(bordering)
//
// N is min-max scaling by default (a degenerate range maps to 0) or a z-score
// squashed through the logistic function. Weights default to (0.4, 0.4, 0.2)
// and are re-normalized to sum to 1.
//
// Selection walks hotspots in descending SES (tie → lower id) and accepts a
// candidate only if min(d(c,s), d(s,c)) ≥ SpacingThreshold for every accepted
// superspot s, stopping at max(1, round(H/Ratio)) superspots.
//
// Clustering caps every cluster at MaxChildren = ceil(Ratio × CapacitySlack).
// Clusters below MinChildren are dissolved smallest-first and their superspot
// is demoted; the whole cluster moves into the nearest cluster with room, or
// its members are spread one by one when no single cluster can take them.
//
// Invariants of a returned Network (checked by Validate):
//
//   - Partition: every hotspot belongs to exactly one cluster and every
//     superspot is a member of its own cluster.
//   - Spacing: superspots are pairwise at least SpacingThreshold apart.
//   - Balance: MinChildren ≤ |cluster| ≤ Capacity.
//
// Errors:
//
//	DataError    – empty tract, unknown tract reference, duplicate tract,
//	               disconnected hotspot, fewer than two tracts.
//	BalanceError – spacing, ratio and MinChildren cannot be met together.
//	ErrBadOption – an invalid option value.
//
// The returned Network is immutable and safe for concurrent readers.
package network
