// SPDX-License-Identifier: MIT

package network

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
)

// balancer holds the mutable cluster assignment while clustering runs.
// owner and members are discarded once the network is frozen.
type balancer struct {
	oracle      core.DistanceOracle
	capacity    int
	minChildren int
	owner       []core.HotspotID
	members     map[core.HotspotID][]core.HotspotID
	log         *zap.Logger
}

func newBalancer(o core.DistanceOracle, h, capacity, minChildren int, log *zap.Logger) *balancer {
	owner := make([]core.HotspotID, h)
	for i := range owner {
		owner[i] = core.NoHotspot
	}

	return &balancer{
		oracle:      o,
		capacity:    capacity,
		minChildren: minChildren,
		owner:       owner,
		members:     make(map[core.HotspotID][]core.HotspotID),
		log:         log,
	}
}

// superspots returns the current superspot ids sorted ascending.
func (b *balancer) superspots() []core.HotspotID {
	out := make([]core.HotspotID, 0, len(b.members))
	for s := range b.members {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// nearest orders candidate superspots by travel from h (tie → lower id) and
// drops unreachable ones.
func (b *balancer) nearest(h core.HotspotID, cands []core.HotspotID) []core.HotspotID {
	type pref struct {
		id core.HotspotID
		d  float64
	}
	prefs := make([]pref, 0, len(cands))
	for _, s := range cands {
		d := core.Distance(b.oracle, h, s)
		if math.IsInf(d, 1) {
			continue
		}
		prefs = append(prefs, pref{s, d})
	}
	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].d != prefs[j].d {
			return prefs[i].d < prefs[j].d
		}
		return prefs[i].id < prefs[j].id
	})
	out := make([]core.HotspotID, len(prefs))
	for i, p := range prefs {
		out[i] = p.id
	}

	return out
}

func (b *balancer) put(h, s core.HotspotID) {
	b.owner[h] = s
	b.members[s] = append(b.members[s], h)
}

// assign seeds every superspot with itself, then places remaining hotspots in
// ascending distance-to-nearest-superspot order (tie → lower id), each into the
// nearest superspot that still has spare capacity.
//
// Complexity: O(H·S log S).
func (b *balancer) assign(supers []core.HotspotID) error {
	// 1) Seed clusters.
	for _, s := range supers {
		b.put(s, s)
	}

	// 2) Order the rest by how close they are to their best hub.
	type pending struct {
		id    core.HotspotID
		prefs []core.HotspotID
		first float64
	}
	rest := make([]pending, 0, len(b.owner)-len(supers))
	for h := range b.owner {
		id := core.HotspotID(h)
		if b.owner[id] != core.NoHotspot {
			continue
		}
		prefs := b.nearest(id, supers)
		if len(prefs) == 0 {
			return &BalanceError{Cluster: core.NoHotspot, Reason: fmt.Sprintf("hotspot %d cannot reach any superspot", id)}
		}
		rest = append(rest, pending{id: id, prefs: prefs, first: core.Distance(b.oracle, id, prefs[0])})
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].first != rest[j].first {
			return rest[i].first < rest[j].first
		}
		return rest[i].id < rest[j].id
	})

	// 3) Capacity-aware greedy placement; overflow goes to the next-nearest hub.
	for _, p := range rest {
		placed := false
		for _, s := range p.prefs {
			if len(b.members[s]) < b.capacity {
				b.put(p.id, s)
				placed = true
				break
			}
		}
		if !placed {
			return &BalanceError{Cluster: p.prefs[0], Size: len(b.members[p.prefs[0]]), Reason: fmt.Sprintf("no reachable superspot has spare capacity for hotspot %d", p.id)}
		}
	}

	return nil
}

// mergeUndersized dissolves clusters smaller than minChildren, smallest first
// (tie → lower superspot id). The whole cluster moves into the nearest other
// cluster that can absorb it; failing that, members are spread one by one over
// the nearest clusters with spare capacity. The dissolved hub is demoted.
func (b *balancer) mergeUndersized() error {
	for {
		// 1) Pick the smallest undersized cluster.
		victim, size := core.NoHotspot, math.MaxInt
		for _, s := range b.superspots() {
			if n := len(b.members[s]); n < b.minChildren && n < size {
				victim, size = s, n
			}
		}
		if victim == core.NoHotspot {
			return nil
		}
		if len(b.members) == 1 {
			return &BalanceError{Cluster: victim, Size: size, Reason: fmt.Sprintf("single cluster below min_children=%d", b.minChildren)}
		}

		others := make([]core.HotspotID, 0, len(b.members)-1)
		for _, s := range b.superspots() {
			if s != victim {
				others = append(others, s)
			}
		}
		moving := append([]core.HotspotID(nil), b.members[victim]...)
		sort.Slice(moving, func(i, j int) bool { return moving[i] < moving[j] })
		delete(b.members, victim)

		// 2) Whole-cluster merge into the nearest hub that fits.
		target := core.NoHotspot
		for _, t := range b.nearest(victim, others) {
			if len(b.members[t])+len(moving) <= b.capacity {
				target = t
				break
			}
		}
		if target != core.NoHotspot {
			for _, m := range moving {
				b.put(m, target)
			}
			b.log.Debug("merged undersized cluster",
				zap.Int("demoted", int(victim)), zap.Int("into", int(target)), zap.Int("size", size))
			continue
		}

		// 3) Fallback: spread members individually.
		for _, m := range moving {
			placed := false
			for _, t := range b.nearest(m, others) {
				if len(b.members[t]) < b.capacity {
					b.put(m, t)
					placed = true
					break
				}
			}
			if !placed {
				return &BalanceError{Cluster: victim, Size: size, Reason: "no spare capacity left to absorb undersized cluster"}
			}
		}
		b.log.Debug("spread undersized cluster",
			zap.Int("demoted", int(victim)), zap.Int("size", size))
	}
}
