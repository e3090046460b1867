// SPDX-License-Identifier: MIT

package qlearn

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/mdp"
)

// Policies is the joined, read-only output of TrainAll: one fragment per
// hotspot agent and one per superspot agent.
type Policies struct {
	Hotspot   map[core.HotspotID]*Fragment
	Superspot map[core.HotspotID]*Fragment
	Warnings  []ConvergenceWarning
}

// NewPolicies returns an empty set.
func NewPolicies() *Policies {
	return &Policies{
		Hotspot:   make(map[core.HotspotID]*Fragment),
		Superspot: make(map[core.HotspotID]*Fragment),
	}
}

// Add files f under its tier and agent.
func (p *Policies) Add(f *Fragment) {
	if f.Tier() == mdp.TierSuperspot {
		p.Superspot[f.Agent()] = f
		return
	}
	p.Hotspot[f.Agent()] = f
}

// Fragment returns the fragment of node at tier.
func (p *Policies) Fragment(tier mdp.Tier, node core.HotspotID) (*Fragment, bool) {
	m := p.Hotspot
	if tier == mdp.TierSuperspot {
		m = p.Superspot
	}
	f, ok := m[node]
	return f, ok
}

// All returns every fragment ordered by (tier, agent).
func (p *Policies) All() []*Fragment {
	out := make([]*Fragment, 0, len(p.Hotspot)+len(p.Superspot))
	for _, f := range p.Hotspot {
		out = append(out, f)
	}
	for _, f := range p.Superspot {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier() != out[j].Tier() {
			return out[i].Tier() < out[j].Tier()
		}
		return out[i].Agent() < out[j].Agent()
	})

	return out
}

// Entries returns the total number of Q entries.
func (p *Policies) Entries() int {
	n := 0
	for _, f := range p.All() {
		n += f.Len()
	}
	return n
}

// TaskSeed derives the seed of one process from the base seed so results do
// not depend on which worker trains it or in which order.
func TaskSeed(base uint64, tier mdp.Tier, owner core.HotspotID) uint64 {
	x := base ^ (uint64(tier)<<32 | uint64(uint32(owner)))
	// splitmix64 finalizer
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb

	return x ^ (x >> 31)
}

// TrainAll trains every process of set concurrently, at most Workers at a
// time, and joins the fragments. The first error cancels the remaining tasks.
func TrainAll(ctx context.Context, set *mdp.Set, opts ...Option) (*Policies, error) {
	if set == nil {
		return nil, ErrNilProcess
	}
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	log := o.Logger.With(zap.String("component", "qlearn"))

	procs := set.Processes()
	results := make([]*Result, len(procs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for i, p := range procs {
		task := o
		task.Seed = TaskSeed(o.Seed, p.Tier(), p.Owner())
		g.Go(func() error {
			r, err := train(gctx, p, task)
			if err != nil {
				return fmt.Errorf("train %s process %d: %w", p.Tier(), p.Owner(), err)
			}
			results[i] = r
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	pol := NewPolicies()
	for _, r := range results {
		for _, f := range r.Fragments {
			pol.Add(f)
		}
		pol.Warnings = append(pol.Warnings, r.Warnings...)
	}
	log.Info("training finished",
		zap.Int("processes", len(procs)),
		zap.Int("hotspot_agents", len(pol.Hotspot)),
		zap.Int("superspot_agents", len(pol.Superspot)),
		zap.Int("entries", pol.Entries()),
		zap.Int("warnings", len(pol.Warnings)))

	return pol, nil
}
