// SPDX-License-Identifier: MIT

package network

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/quikdel/core"
)

// Superspot is the hub role of a hotspot. ID is the hotspot's own id; the
// superspot is always listed among its Members.
type Superspot struct {
	ID       core.HotspotID   `json:"id"`
	SES      float64          `json:"ses"`
	Members  []core.HotspotID `json:"members"`
	Centroid core.Point       `json:"centroid"`
}

// Network is the frozen two-tier structure: one hotspot table plus a set of
// superspot roles that partition it. Construct with Build; after loading a
// serialized network call Attach before use.
type Network struct {
	City             string         `json:"city"`
	Ratio            float64        `json:"ratio"`
	MinChildren      int            `json:"min_children"`
	Capacity         int            `json:"capacity"`
	SpacingThreshold float64        `json:"spacing_threshold"`
	Hotspots         []core.Hotspot `json:"hotspots"`
	Superspots       []Superspot    `json:"superspots"`

	oracle core.DistanceOracle
	byID   map[core.HotspotID]int // superspot id → index in Superspots
}

// Attach binds a distance oracle to a network (typically after decoding) and
// rebuilds the superspot index. The oracle must cover every hotspot.
func (n *Network) Attach(o core.DistanceOracle) error {
	if o == nil {
		return ErrNoOracle
	}
	if o.Len() < len(n.Hotspots) {
		return &DataError{Reason: fmt.Sprintf("oracle covers %d of %d hotspots", o.Len(), len(n.Hotspots))}
	}
	n.oracle = o
	n.reindex()

	return nil
}

func (n *Network) reindex() {
	n.byID = make(map[core.HotspotID]int, len(n.Superspots))
	for i, s := range n.Superspots {
		n.byID[s.ID] = i
	}
}

// Oracle returns the attached distance oracle (nil if none).
func (n *Network) Oracle() core.DistanceOracle { return n.oracle }

// Len returns the number of hotspots H.
func (n *Network) Len() int { return len(n.Hotspots) }

// Hotspot returns the hotspot with the given id.
func (n *Network) Hotspot(id core.HotspotID) (core.Hotspot, bool) {
	if id < 0 || int(id) >= len(n.Hotspots) {
		return core.Hotspot{}, false
	}
	return n.Hotspots[id], true
}

// IsSuperspot reports whether id carries the superspot role.
func (n *Network) IsSuperspot(id core.HotspotID) bool {
	_, ok := n.byID[id]
	return ok
}

// Superspot returns the superspot role of id.
func (n *Network) Superspot(id core.HotspotID) (Superspot, bool) {
	i, ok := n.byID[id]
	if !ok {
		return Superspot{}, false
	}
	return n.Superspots[i], true
}

// ClusterOf returns the superspot owning hotspot id, or NoHotspot.
func (n *Network) ClusterOf(id core.HotspotID) core.HotspotID {
	h, ok := n.Hotspot(id)
	if !ok {
		return core.NoHotspot
	}
	return h.Cluster
}

// SuperspotIDs returns the superspot ids sorted ascending.
func (n *Network) SuperspotIDs() []core.HotspotID {
	out := make([]core.HotspotID, len(n.Superspots))
	for i, s := range n.Superspots {
		out[i] = s.ID
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Validate checks the partition, spacing and balance invariants.
//
// Implementation:
//   - Stage 1: every superspot is a hotspot, owns itself, and member lists agree
//     with Hotspot.Cluster.
//   - Stage 2: every hotspot appears in exactly one member list.
//   - Stage 3: pairwise superspot spacing ≥ SpacingThreshold.
//   - Stage 4: MinChildren ≤ |cluster| ≤ Capacity.
//
// Complexity: O(H + S²).
func (n *Network) Validate() error {
	if n.oracle == nil {
		return ErrNoOracle
	}
	if n.byID == nil {
		n.reindex()
	}

	// 1) Role consistency.
	seen := make([]int, len(n.Hotspots))
	for _, s := range n.Superspots {
		h, ok := n.Hotspot(s.ID)
		if !ok {
			return &DataError{Reason: fmt.Sprintf("superspot %d is not a hotspot", s.ID)}
		}
		if h.Cluster != s.ID {
			return &BalanceError{Cluster: s.ID, Size: len(s.Members), Reason: "superspot is not a member of its own cluster"}
		}
		for _, m := range s.Members {
			mh, ok := n.Hotspot(m)
			if !ok {
				return &DataError{Reason: fmt.Sprintf("cluster %d lists unknown hotspot %d", s.ID, m)}
			}
			if mh.Cluster != s.ID {
				return &BalanceError{Cluster: s.ID, Size: len(s.Members), Reason: fmt.Sprintf("member %d points to cluster %d", m, mh.Cluster)}
			}
			seen[m]++
		}
	}

	// 2) Strict partition.
	for id, c := range seen {
		if c != 1 {
			return &BalanceError{Cluster: n.ClusterOf(core.HotspotID(id)), Reason: fmt.Sprintf("hotspot %d appears in %d clusters", id, c)}
		}
	}

	// 3) Spacing.
	for i := 0; i < len(n.Superspots); i++ {
		for j := i + 1; j < len(n.Superspots); j++ {
			a, b := n.Superspots[i].ID, n.Superspots[j].ID
			if d := core.Symmetric(n.oracle, a, b); d < n.SpacingThreshold || math.IsNaN(d) {
				return &BalanceError{Cluster: a, Size: len(n.Superspots[i].Members), Reason: fmt.Sprintf("spacing to %d is %.3f < %.3f", b, d, n.SpacingThreshold)}
			}
		}
	}

	// 4) Balance.
	for _, s := range n.Superspots {
		if len(s.Members) < n.MinChildren || len(s.Members) > n.Capacity {
			return &BalanceError{Cluster: s.ID, Size: len(s.Members), Reason: fmt.Sprintf("size outside [%d,%d]", n.MinChildren, n.Capacity)}
		}
	}

	return nil
}
