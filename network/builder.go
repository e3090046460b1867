// SPDX-License-Identifier: MIT

package network

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/matrix"
)

// Build constructs the frozen two-tier network for one city run.
//
// Implementation:
//   - Stage 1: Resolve and validate options.
//   - Stage 2: Place one hotspot per tract.
//   - Stage 3: Close a copy of the travel matrix and re-index it by hotspot id.
//   - Stage 4: Score SES and select spaced superspots.
//   - Stage 5: Balanced clustering and undersized merge.
//   - Stage 6: Freeze roles, compute hub centroids and validate invariants.
//
// Errors: ErrBadOption, DataError, BalanceError, or ctx.Err().
// Complexity: O(T³) for matrix closure, O(H·S log S) for clustering.
func Build(ctx context.Context, in Input, opts ...Option) (*Network, error) {
	// 1) Options.
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	log := o.Logger.With(zap.String("component", "network"), zap.String("city", in.City))

	// 2) Placement.
	if len(in.Tracts) < 2 {
		return nil, &DataError{Reason: fmt.Sprintf("need at least 2 tracts, got %d", len(in.Tracts))}
	}
	hs, err := place(in)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	// 3) Oracle.
	oracle, err := ClosedOracle(in.Travel, hs)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	// 4) SES + selection.
	score(hs, o.Weights, o.Normalization)
	target := targetCount(len(hs), o.Ratio)
	supers := selectSuperspots(hs, oracle, target, o.SpacingThreshold)
	capacity := MaxChildren(o.Ratio, o.CapacitySlack, o.MinChildren)
	if len(supers) < target {
		log.Warn("spacing limited superspot selection",
			zap.Int("target", target), zap.Int("selected", len(supers)))
	}
	if len(supers)*capacity < len(hs) {
		return nil, &BalanceError{
			Cluster: core.NoHotspot,
			Size:    len(hs),
			Reason:  fmt.Sprintf("%d superspots × cap %d cannot hold %d hotspots", len(supers), capacity, len(hs)),
		}
	}

	// 5) Clustering.
	b := newBalancer(oracle, len(hs), capacity, o.MinChildren, log)
	if err = b.assign(supers); err != nil {
		return nil, err
	}
	if err = b.mergeUndersized(); err != nil {
		return nil, err
	}

	// 6) Freeze.
	net := &Network{
		City:             in.City,
		Ratio:            o.Ratio,
		MinChildren:      o.MinChildren,
		Capacity:         capacity,
		SpacingThreshold: o.SpacingThreshold,
		Hotspots:         hs,
		oracle:           oracle,
	}
	for _, s := range b.superspots() {
		members := append([]core.HotspotID(nil), b.members[s]...)
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		var cx, cy float64
		for _, m := range members {
			hs[m].Cluster = s
			cx += hs[m].Location.X
			cy += hs[m].Location.Y
		}
		net.Superspots = append(net.Superspots, Superspot{
			ID:       s,
			SES:      hs[s].SES,
			Members:  members,
			Centroid: core.Point{X: cx / float64(len(members)), Y: cy / float64(len(members))},
		})
	}
	net.reindex()
	if err = net.Validate(); err != nil {
		return nil, err
	}

	log.Info("network built",
		zap.Int("hotspots", len(hs)),
		zap.Int("superspots", len(net.Superspots)),
		zap.Int("capacity", capacity))

	return net, nil
}

// ClosedOracle clones the travel matrix, closes missing pairs and re-indexes
// the result by hotspot id. Every hotspot must reach at least one other.
// Loaders use it to re-attach an oracle to a decoded Network.
func ClosedOracle(m *matrix.Matrix, hs []core.Hotspot) (core.DistanceOracle, error) {
	if m == nil {
		return nil, &DataError{Reason: "missing travel matrix"}
	}
	for _, h := range hs {
		if _, ok := m.Index(h.TractID); !ok {
			return nil, &DataError{Reason: "tract missing from travel matrix", Ref: h.TractID}
		}
	}
	closed := m.Clone()
	closed.Complete()
	view, err := closed.View(tractOrder(hs))
	if err != nil {
		return nil, &DataError{Reason: err.Error()}
	}

	for _, h := range hs {
		reach := false
		for _, o := range hs {
			if o.ID == h.ID {
				continue
			}
			if d := core.Distance(view, h.ID, o.ID); !math.IsInf(d, 1) {
				reach = true
				break
			}
		}
		if !reach {
			return nil, &DataError{Reason: "disconnected hotspot", Ref: h.TractID}
		}
	}

	return view, nil
}
