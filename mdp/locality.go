// SPDX-License-Identifier: MIT

package mdp

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/quikdel/core"
)

// locality is the movement structure shared by both tiers: a node set, a
// symmetrized k-nearest-neighbor graph over it, and the reward scale.
type locality struct {
	tier   Tier
	owner  core.HotspotID
	nodes  []core.HotspotID
	member map[core.HotspotID]bool
	moves  map[core.HotspotID][]core.HotspotID // legal directed moves, ascending
	oracle core.DistanceOracle
	cost   CostKind
	norm   float64
	bonus  float64
	graph  *core.Graph
}

// travel returns the configured cost component, +Inf when unreachable.
func travel(o core.DistanceOracle, cost CostKind, a, b core.HotspotID) float64 {
	t, ok := o.Travel(a, b)
	if !ok {
		return math.Inf(1)
	}
	if cost == CostTime {
		return t.Time
	}
	return t.Distance
}

// newLocality builds the k-NN movement graph over nodes.
//
// Implementation:
//   - Stage 1: each node links to its k cheapest reachable peers (tie → lower id).
//   - Stage 2: edges are undirected, so the relation is symmetric.
//   - Stage 3: Graph.Connect links stray components to the root's component.
//   - Stage 4: a move u→v is legal iff the edge exists and d(u,v) is finite.
//
// The normalizer is the largest finite pairwise cost inside nodes (1 if none).
// Complexity: O(n² log n).
func newLocality(tier Tier, owner core.HotspotID, nodes []core.HotspotID, k int,
	o core.DistanceOracle, cost CostKind, bonus float64) (*locality, int, error) {
	l := &locality{
		tier:   tier,
		owner:  owner,
		nodes:  append([]core.HotspotID(nil), nodes...),
		member: make(map[core.HotspotID]bool, len(nodes)),
		moves:  make(map[core.HotspotID][]core.HotspotID, len(nodes)),
		oracle: o,
		cost:   cost,
		bonus:  bonus,
		graph:  core.NewGraph(),
	}
	sort.Slice(l.nodes, func(i, j int) bool { return l.nodes[i] < l.nodes[j] })

	sym := func(a, b core.HotspotID) float64 {
		return math.Min(travel(o, cost, a, b), travel(o, cost, b, a))
	}

	// 1) k nearest peers + normalizer.
	for _, u := range l.nodes {
		l.member[u] = true
		if err := l.graph.AddVertex(u); err != nil {
			return nil, 0, err
		}
	}
	for _, u := range l.nodes {
		peers := make([]core.HotspotID, 0, len(l.nodes)-1)
		for _, v := range l.nodes {
			if v == u {
				continue
			}
			d := travel(o, cost, u, v)
			if math.IsInf(d, 1) {
				continue
			}
			l.norm = math.Max(l.norm, d)
			peers = append(peers, v)
		}
		sort.SliceStable(peers, func(i, j int) bool {
			di, dj := travel(o, cost, u, peers[i]), travel(o, cost, u, peers[j])
			if di != dj {
				return di < dj
			}
			return peers[i] < peers[j]
		})
		if len(peers) > k {
			peers = peers[:k]
		}

		// 2) Symmetric by construction.
		for _, v := range peers {
			if err := l.graph.AddEdge(u, v, sym(u, v)); err != nil {
				return nil, 0, fmt.Errorf("locality %d–%d: %w", u, v, err)
			}
		}
	}
	if l.norm == 0 {
		l.norm = 1
	}

	// 3) Connectivity repair.
	linked := 0
	if len(l.nodes) > 0 {
		var err error
		if linked, err = l.graph.Connect(l.nodes[0], sym); err != nil {
			return nil, 0, err
		}
	}

	// 4) Directed legal moves.
	for _, u := range l.nodes {
		nbrs, err := l.graph.NeighborIDs(u)
		if err != nil {
			return nil, 0, err
		}
		legal := make([]core.HotspotID, 0, len(nbrs))
		for _, v := range nbrs {
			if !math.IsInf(travel(o, cost, u, v), 1) {
				legal = append(legal, v)
			}
		}
		l.moves[u] = legal
	}

	return l, linked, nil
}

// Tier implements Process.
func (l *locality) Tier() Tier { return l.tier }

// Owner implements Process.
func (l *locality) Owner() core.HotspotID { return l.owner }

// Nodes implements Process.
func (l *locality) Nodes() []core.HotspotID { return append([]core.HotspotID(nil), l.nodes...) }

// Normalizer implements Process.
func (l *locality) Normalizer() float64 { return l.norm }

// Neighbors returns the locality neighbors of node, ascending.
func (l *locality) Neighbors(node core.HotspotID) []core.HotspotID {
	return append([]core.HotspotID(nil), l.moves[node]...)
}

// Connected reports whether every node is reachable in the locality graph.
func (l *locality) Connected() bool {
	if len(l.nodes) == 0 {
		return true
	}
	order, err := l.graph.Reachable(l.nodes[0])
	return err == nil && len(order) == len(l.nodes)
}

// move evaluates a plain move toward goal.
func (l *locality) move(node, goal, action core.HotspotID) (Transition, error) {
	if !l.member[node] {
		return Transition{}, fmt.Errorf("%w: %d", ErrUnknownAgent, node)
	}
	legal := false
	for _, v := range l.moves[node] {
		if v == action {
			legal = true
			break
		}
	}
	if !legal {
		return Transition{}, fmt.Errorf("%w: %d→%d", ErrInvalidAction, node, action)
	}

	tr := Transition{Next: action, Reward: -travel(l.oracle, l.cost, node, action) / l.norm}
	if action == goal {
		tr.Reward += l.bonus
		tr.Terminal = true
	}

	return tr, nil
}
