// SPDX-License-Identifier: MIT

package qlearn

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/mdp"
)

// Result is the output of training one process.
type Result struct {
	Tier      mdp.Tier
	Owner     core.HotspotID
	Fragments map[core.HotspotID]*Fragment // by agent node
	Episodes  []EpisodeStat
	Warnings  []ConvergenceWarning
}

// Entries returns the total number of Q entries across fragments.
func (r *Result) Entries() int {
	n := 0
	for _, f := range r.Fragments {
		n += f.Len()
	}
	return n
}

type startGoal struct {
	node, goal core.HotspotID
}

// Train runs tabular Q-learning with Boltzmann exploration on p.
//
// Implementation:
//   - Stage 1: one Table and Agent per node; enumerate (start, goal) pairs
//     that have at least one action.
//   - Stage 2: each episode samples a pair uniformly and walks until a
//     terminal transition or MaxSteps. The acting agent picks an action by
//     Boltzmann over its own table at its own temperature.
//   - Stage 3: Q(s,a) ← Q(s,a) + α(r + γ·max Q(s',·) − Q(s,a)), where the max
//     is read from the next node's table; terminal transitions do not
//     bootstrap.
//   - Stage 4: agents that acted decay their temperature.
//   - Stage 5: freeze tables and report goals that never got an entry.
//
// Same process, options and seed → identical fragments.
// Complexity: O(Episodes · MaxSteps · A) with A the largest action set.
func Train(ctx context.Context, p mdp.Process, opts ...Option) (*Result, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return train(ctx, p, o)
}

func train(ctx context.Context, p mdp.Process, o Options) (*Result, error) {
	if p == nil {
		return nil, ErrNilProcess
	}
	tier := p.Tier()
	log := o.Logger.With(zap.String("component", "qlearn"), zap.Stringer("tier", tier), zap.Int("owner", int(p.Owner())))
	sched := Schedule{Init: o.TemperatureInit, Decay: o.DecayRate, Floor: o.MinTemperature}

	// 1) Agents, tables and episode starts.
	nodes := p.Nodes()
	tables := make(map[core.HotspotID]*Table, len(nodes))
	agents := make(map[core.HotspotID]*Agent, len(nodes))
	var pairs []startGoal
	for _, n := range nodes {
		tables[n] = NewTable(n, tier, p.Owner())
		agents[n] = &Agent{ID: n, Tier: tier, Temperature: sched.At(0)}
		for _, g := range p.Goals() {
			if len(p.Actions(n, g)) > 0 {
				pairs = append(pairs, startGoal{n, g})
			}
		}
	}

	res := &Result{Tier: tier, Owner: p.Owner(), Fragments: make(map[core.HotspotID]*Fragment, len(nodes))}
	if len(pairs) == 0 {
		log.Debug("nothing to learn")
		for n, t := range tables {
			res.Fragments[n] = t.Freeze()
		}
		return res, nil
	}

	rng := rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
	res.Episodes = make([]EpisodeStat, 0, o.Episodes)
	acted := make(map[core.HotspotID]bool)
	var vals []float64

	// 2) Episodes.
	for e := 0; e < o.Episodes; e++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := pairs[rng.IntN(len(pairs))]
		node, goal := start.node, start.goal
		stat := EpisodeStat{Episode: e, Start: node, Goal: goal, Temperature: agents[node].Temperature}
		clear(acted)

		for stat.Steps < o.MaxSteps {
			actions := p.Actions(node, goal)
			if len(actions) == 0 {
				break
			}
			table, agent := tables[node], agents[node]
			vals = vals[:0]
			for _, a := range actions {
				vals = append(vals, table.Value(goal, a))
			}
			action := actions[Boltzmann(vals, agent.Temperature, rng.Float64())]

			tr, err := p.Step(node, goal, action)
			if err != nil {
				return nil, err
			}

			// 3) Update.
			target := tr.Reward
			if !tr.Terminal {
				if next, ok := tables[tr.Next]; ok {
					target += o.Gamma * next.Max(goal, p.Actions(tr.Next, goal))
				}
			}
			table.Update(goal, action, target, o.Alpha)
			acted[node] = true
			stat.Reward += tr.Reward
			stat.Steps++
			if tr.Terminal {
				break
			}
			node = tr.Next
		}

		// 4) Decay.
		for n := range acted {
			a := agents[n]
			a.Episodes++
			a.Temperature = sched.At(a.Episodes)
		}

		res.Episodes = append(res.Episodes, stat)
		if o.Observer != nil {
			o.Observer.ObserveEpisode(tier.String(), stat.Reward, stat.Steps)
		}
		if ce := log.Check(zap.DebugLevel, "episode"); ce != nil && (e+1)%100 == 0 {
			ce.Write(zap.Int("episode", e+1), zap.Float64("reward", stat.Reward),
				zap.Int("steps", stat.Steps), zap.Float64("temperature", stat.Temperature))
		}
	}

	// 5) Freeze + warnings.
	for _, n := range nodes {
		f := tables[n].Freeze()
		res.Fragments[n] = f
		if o.Observer != nil {
			o.Observer.ObserveFragment(tier.String(), f.Len())
		}
		var missing []core.HotspotID
		for _, g := range p.Goals() {
			if len(p.Actions(n, g)) > 0 && !f.Knows(g) {
				missing = append(missing, g)
			}
		}
		if len(missing) > 0 {
			w := ConvergenceWarning{Tier: tier, Owner: p.Owner(), Agent: n, MissingGoals: missing}
			res.Warnings = append(res.Warnings, w)
			log.Warn("agent did not converge", zap.Stringer("warning", w))
		}
	}
	log.Debug("process trained", zap.Int("agents", len(nodes)), zap.Int("entries", res.Entries()))

	return res, nil
}
