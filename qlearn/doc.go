// SPDX-License-Identifier: MIT

// Package qlearn trains the per-node agents of the delivery network with
// tabular Q-learning and hands out read-only policy fragments.
//
// Training (centralized):
//
//	Q(s,a) ← Q(s,a) + α·(r + γ·max_a' Q(s',a') − Q(s,a))
//
//   - s is (node, goal); the node is implicit in the agent, so every agent
//     keeps a map keyed by (goal, action).
//   - Unvisited entries read as 0 and are created on first update, which keeps
//     fragments sparse.
//   - Terminal transitions (arrival, ascend) do not bootstrap.
//   - Actions are drawn from P(a) ∝ exp((Q(a) − max Q)/T); T starts at
//     TemperatureInit and decays by DecayRate after every episode the agent
//     acts in, never below MinTemperature.
//
// Execution (decentralized):
//
//	Table.Freeze produces a Fragment, which has accessors only. Routers and
//	negotiators receive Fragments and cannot write to them.
//
// Parallelism:
//
//	TrainAll trains every MDP_h and the MDP_s with errgroup, bounded by
//	Workers. Each task owns its tables and uses a seed derived from the base
//	seed and the process identity (TaskSeed), so results do not depend on
//	scheduling.
package qlearn
