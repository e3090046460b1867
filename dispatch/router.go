// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/mdp"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
)

// Step is one hop of a routed path.
type Step struct {
	From     core.HotspotID `json:"from"`
	To       core.HotspotID `json:"to"`
	Tier     mdp.Tier       `json:"tier"`
	Goal     core.HotspotID `json:"goal"`
	Agent    core.HotspotID `json:"agent"`
	Ascend   bool           `json:"ascend,omitempty"`
	Distance float64        `json:"distance"`
	Time     float64        `json:"time"`
}

// Path is a routed origin → destination itinerary.
type Path struct {
	Origin      core.HotspotID `json:"origin"`
	Destination core.HotspotID `json:"destination"`
	Steps       []Step         `json:"steps"`
	Distance    float64        `json:"distance"`
	Time        float64        `json:"time"`
	Fallbacks   int            `json:"fallbacks"`
}

// Nodes returns the visited hotspots, origin first.
func (p *Path) Nodes() []core.HotspotID {
	out := make([]core.HotspotID, 0, len(p.Steps)+1)
	out = append(out, p.Origin)
	for _, s := range p.Steps {
		out = append(out, s.To)
	}
	return out
}

func (p *Path) add(s Step) {
	p.Steps = append(p.Steps, s)
	p.Distance += s.Distance
	p.Time += s.Time
}

// Router turns frozen fragments into paths by greedy argmax; it never explores.
// A Router is immutable and safe for concurrent use.
type Router struct {
	net    *network.Network
	pol    *qlearn.Policies
	oracle core.DistanceOracle
}

// NewRouter binds a network and its trained policies.
func NewRouter(net *network.Network, pol *qlearn.Policies) (*Router, error) {
	if net == nil || net.Oracle() == nil || pol == nil {
		return nil, ErrNotReady
	}
	return &Router{net: net, pol: pol, oracle: net.Oracle()}, nil
}

// Route computes the two-level path from origin to dest.
//
// Implementation:
//   - Same cluster: one hotspot phase toward dest.
//   - Different clusters: hotspot phase toward GoalExit (ends with ascend),
//     superspot phase to dest's superspot, hotspot phase to dest.
//
// Within a phase the agent at the current node picks its best entry for the
// goal among actions leading to unvisited nodes. If it knows nothing usable
// for the goal, it follows its known goal nearest to the wanted one.
//
// Errors: ErrNoRoute for unknown endpoints or missing travel, ErrPolicyGap
// when no agent entry can make progress.
func (r *Router) Route(origin, dest core.HotspotID) (*Path, error) {
	cO, cD := r.net.ClusterOf(origin), r.net.ClusterOf(dest)
	if cO == core.NoHotspot || cD == core.NoHotspot {
		return nil, fmt.Errorf("%w: %d → %d", ErrNoRoute, origin, dest)
	}
	p := &Path{Origin: origin, Destination: dest}
	if origin == dest {
		return p, nil
	}

	if cO == cD {
		return p, r.walk(p, mdp.TierHotspot, origin, dest, cO)
	}
	if err := r.walk(p, mdp.TierHotspot, origin, mdp.GoalExit, cO); err != nil {
		return nil, err
	}
	if err := r.walk(p, mdp.TierSuperspot, cO, cD, core.NoHotspot); err != nil {
		return nil, err
	}
	if err := r.walk(p, mdp.TierHotspot, cD, dest, cD); err != nil {
		return nil, err
	}

	return p, nil
}

// walk runs one phase from start until goal is reached (or, for GoalExit,
// until the request sits at the owner superspot).
func (r *Router) walk(p *Path, tier mdp.Tier, start, goal, owner core.HotspotID) error {
	visited := map[core.HotspotID]bool{start: true}
	cur := start
	for {
		if cur == goal || (goal == mdp.GoalExit && cur == owner) {
			return nil
		}
		frag, ok := r.pol.Fragment(tier, cur)
		if !ok {
			return fmt.Errorf("%w: no %s agent at %d", ErrPolicyGap, tier, cur)
		}
		action, used, ok := r.choose(frag, goal, owner, visited)
		if !ok {
			return fmt.Errorf("%w: %s agent %d toward %d", ErrPolicyGap, tier, cur, goal)
		}
		if used != goal {
			p.Fallbacks++
		}

		next, ascend := action, action == mdp.ActionAscend
		if ascend {
			next = owner
		}
		t, ok := r.oracle.Travel(cur, next)
		if !ok {
			return fmt.Errorf("%w: no travel %d → %d", ErrNoRoute, cur, next)
		}
		p.add(Step{From: cur, To: next, Tier: tier, Goal: goal, Agent: cur, Ascend: ascend, Distance: t.Distance, Time: t.Time})
		if ascend {
			return nil
		}
		visited[next] = true
		cur = next
	}
}

// choose returns the best usable action for goal, falling back to the known
// goals nearest to it. used reports which goal's entries were followed.
func (r *Router) choose(frag *qlearn.Fragment, goal, owner core.HotspotID, visited map[core.HotspotID]bool) (action, used core.HotspotID, ok bool) {
	usable := func(g core.HotspotID) (core.HotspotID, bool) {
		for _, e := range frag.Ranked(g) {
			if e.Action == mdp.ActionAscend {
				if goal == mdp.GoalExit {
					return e.Action, true
				}
				continue
			}
			if !visited[e.Action] {
				return e.Action, true
			}
		}
		return 0, false
	}

	if a, found := usable(goal); found {
		return a, goal, true
	}
	for _, g := range r.nearestGoals(frag, goal, owner) {
		if a, found := usable(g); found {
			return a, g, true
		}
	}
	return 0, goal, false
}

// nearestGoals orders the fragment's other known goals by distance from the
// wanted goal (GoalExit stands for the owner superspot), tie → lower id.
func (r *Router) nearestGoals(frag *qlearn.Fragment, goal, owner core.HotspotID) []core.HotspotID {
	place := func(g core.HotspotID) core.HotspotID {
		if g == mdp.GoalExit {
			return owner
		}
		return g
	}
	target := place(goal)
	var out []core.HotspotID
	for _, g := range frag.Goals() {
		if g != goal {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := core.Symmetric(r.oracle, place(out[i]), target)
		dj := core.Symmetric(r.oracle, place(out[j]), target)
		if di != dj {
			return di < dj
		}
		return out[i] < out[j]
	})

	return out
}

// PAS returns the preferred action set of the agent at node: its top-k
// actions for goal mapped to next-hop hotspots (ascend maps to the owner).
func (r *Router) PAS(tier mdp.Tier, node, goal core.HotspotID, k int) []core.HotspotID {
	frag, ok := r.pol.Fragment(tier, node)
	if !ok {
		return nil
	}
	owner := r.net.ClusterOf(node)
	out := make([]core.HotspotID, 0, k)
	seen := make(map[core.HotspotID]bool, k)
	for _, e := range frag.Ranked(goal) {
		if len(out) == k {
			break
		}
		hop := e.Action
		if hop == mdp.ActionAscend {
			hop = owner
		}
		if hop == node || seen[hop] {
			continue
		}
		seen[hop] = true
		out = append(out, hop)
	}

	return out
}
