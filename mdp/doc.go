// SPDX-License-Identifier: MIT

// Package mdp turns a built network into decentralized decision processes.
//
// Each hotspot (and each superspot at the upper tier) hosts one agent. The
// agent's own node is implicit, so its state is just the goal it routes
// toward and its actions are the neighbors it may hand the request to.
//
// MDP_h (one per cluster):
//
//	goals   = cluster members ∪ {GoalExit}
//	actions = k nearest members (symmetrized, BFS-connected)
//	          ∪ {ActionAscend}  when goal == GoalExit
//	reward  = −cost(h, h')/norm               (move)
//	        + ArrivalBonus, terminal           (h' == goal)
//	        = −cost(h, superspot)/norm + bonus (ascend, terminal)
//
// MDP_s (one per network):
//
//	goals   = superspots
//	actions = k nearest superspots (symmetrized, BFS-connected)
//	reward  = −cost(s, s')/norm, + ArrivalBonus at the goal
//
// norm is the largest finite pairwise cost inside the process, so rewards of
// a move stay in [−1, 0]. Cost is distance by default; WithCost(CostTime)
// switches to travel time.
//
// Processes are immutable after Formulate and may be trained concurrently.
package mdp
