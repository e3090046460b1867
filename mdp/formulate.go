// SPDX-License-Identifier: MIT

package mdp

import (
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/network"
)

// Set holds every process derived from one network.
type Set struct {
	// Hotspot is keyed by the cluster's superspot id.
	Hotspot map[core.HotspotID]*HotspotProcess

	// Superspot is the single MDP_s.
	Superspot *SuperspotProcess
}

// Processes returns all processes in a stable order: MDP_h by ascending
// superspot id, then MDP_s.
func (s *Set) Processes() []Process {
	keys := make([]core.HotspotID, 0, len(s.Hotspot))
	for k := range s.Hotspot {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Process, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, s.Hotspot[k])
	}
	if s.Superspot != nil {
		out = append(out, s.Superspot)
	}

	return out
}

// Formulate derives one MDP_h per cluster and the global MDP_s from net.
// A network with a single superspot yields an MDP_s without moves.
//
// Complexity: O(Σ|C|² log |C| + S² log S).
func Formulate(net *network.Network, opts ...Option) (*Set, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if net == nil || net.Oracle() == nil {
		return nil, ErrNoNetwork
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	log := o.Logger.With(zap.String("component", "mdp"), zap.String("city", net.City))
	oracle := net.Oracle()

	set := &Set{Hotspot: make(map[core.HotspotID]*HotspotProcess, len(net.Superspots))}
	for _, s := range net.Superspots {
		loc, linked, err := newLocality(TierHotspot, s.ID, s.Members, o.Neighbors, oracle, o.Cost, o.ArrivalBonus)
		if err != nil {
			return nil, err
		}
		goals := make([]core.HotspotID, 0, len(s.Members)+1)
		goals = append(goals, GoalExit)
		goals = append(goals, loc.nodes...)
		set.Hotspot[s.ID] = &HotspotProcess{locality: loc, goals: goals}

		if linked > 0 {
			log.Debug("locality repaired", zap.Int("cluster", int(s.ID)), zap.Int("links", linked))
		}
		if !loc.Connected() {
			log.Warn("cluster locality is disconnected", zap.Int("cluster", int(s.ID)))
		}
	}

	loc, linked, err := newLocality(TierSuperspot, core.NoHotspot, net.SuperspotIDs(), o.Window, oracle, o.Cost, o.ArrivalBonus)
	if err != nil {
		return nil, err
	}
	set.Superspot = &SuperspotProcess{locality: loc}
	if linked > 0 {
		log.Debug("superspot window repaired", zap.Int("links", linked))
	}

	log.Info("processes formulated",
		zap.Int("hotspot_processes", len(set.Hotspot)),
		zap.Int("superspots", len(loc.nodes)),
		zap.String("cost", string(o.Cost)))

	return set, nil
}
