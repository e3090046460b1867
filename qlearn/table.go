// SPDX-License-Identifier: MIT

package qlearn

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/mdp"
)

// Table is the mutable Q table of one agent during training. Entries are
// created lazily on first update; absent entries read as 0.
//
// A Table is owned by a single training goroutine and is not synchronized.
type Table struct {
	agent core.HotspotID
	tier  mdp.Tier
	owner core.HotspotID
	q     map[Key]float64
}

// NewTable returns an empty table for agent.
func NewTable(agent core.HotspotID, tier mdp.Tier, owner core.HotspotID) *Table {
	return &Table{agent: agent, tier: tier, owner: owner, q: make(map[Key]float64)}
}

// Value returns Q(goal, action), 0 when unvisited.
func (t *Table) Value(goal, action core.HotspotID) float64 {
	return t.q[Key{goal, action}]
}

// Max returns the largest value over actions (0 for no actions).
func (t *Table) Max(goal core.HotspotID, actions []core.HotspotID) float64 {
	if len(actions) == 0 {
		return 0
	}
	best := t.Value(goal, actions[0])
	for _, a := range actions[1:] {
		if v := t.Value(goal, a); v > best {
			best = v
		}
	}
	return best
}

// Update moves Q(goal, action) toward target by alpha:
//
//	Q ← Q + α(target − Q)
func (t *Table) Update(goal, action core.HotspotID, target, alpha float64) {
	k := Key{goal, action}
	q := t.q[k]
	t.q[k] = q + alpha*(target-q)
}

// Len returns the number of stored entries.
func (t *Table) Len() int { return len(t.q) }

// Freeze copies the table into an immutable Fragment.
func (t *Table) Freeze() *Fragment {
	f := &Fragment{agent: t.agent, tier: t.tier, owner: t.owner, q: make(map[Key]float64, len(t.q))}
	for k, v := range t.q {
		f.q[k] = v
	}
	f.index()

	return f
}

// Fragment is the read-only Q table an agent carries into execution. It has
// no mutators; execution code can only read it.
type Fragment struct {
	agent core.HotspotID
	tier  mdp.Tier
	owner core.HotspotID
	q     map[Key]float64
	goals []core.HotspotID
}

func (f *Fragment) index() {
	seen := make(map[core.HotspotID]bool)
	f.goals = f.goals[:0]
	for k := range f.q {
		if !seen[k.Goal] {
			seen[k.Goal] = true
			f.goals = append(f.goals, k.Goal)
		}
	}
	sort.Slice(f.goals, func(i, j int) bool { return f.goals[i] < f.goals[j] })
}

// Agent returns the node hosting this agent.
func (f *Fragment) Agent() core.HotspotID { return f.agent }

// Tier returns the agent's tier.
func (f *Fragment) Tier() mdp.Tier { return f.tier }

// Owner returns the owning superspot for hotspot agents, NoHotspot otherwise.
func (f *Fragment) Owner() core.HotspotID { return f.owner }

// Len returns the number of entries.
func (f *Fragment) Len() int { return len(f.q) }

// Value returns the stored value and whether it exists.
func (f *Fragment) Value(goal, action core.HotspotID) (float64, bool) {
	v, ok := f.q[Key{goal, action}]
	return v, ok
}

// Knows reports whether any entry targets goal.
func (f *Fragment) Knows(goal core.HotspotID) bool {
	i := sort.Search(len(f.goals), func(i int) bool { return f.goals[i] >= goal })
	return i < len(f.goals) && f.goals[i] == goal
}

// Goals returns the goals with at least one entry, ascending.
func (f *Fragment) Goals() []core.HotspotID { return append([]core.HotspotID(nil), f.goals...) }

// Ranked returns the entries for goal by descending value (tie → lower action).
func (f *Fragment) Ranked(goal core.HotspotID) []Entry {
	var out []Entry
	for k, v := range f.q {
		if k.Goal == goal {
			out = append(out, Entry{Goal: k.Goal, Action: k.Action, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Action < out[j].Action
	})

	return out
}

// Entries returns every entry ordered by (goal, action).
func (f *Fragment) Entries() []Entry {
	out := make([]Entry, 0, len(f.q))
	for k, v := range f.q {
		out = append(out, Entry{Goal: k.Goal, Action: k.Action, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Goal != out[j].Goal {
			return out[i].Goal < out[j].Goal
		}
		return out[i].Action < out[j].Action
	})

	return out
}

type fragmentJSON struct {
	Agent   core.HotspotID `json:"agent"`
	Tier    mdp.Tier       `json:"tier"`
	Owner   core.HotspotID `json:"owner"`
	Entries []Entry        `json:"entries"`
}

// MarshalJSON encodes the fragment with entries in (goal, action) order.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(fragmentJSON{Agent: f.agent, Tier: f.tier, Owner: f.owner, Entries: f.Entries()})
}

// DecodeFragment rebuilds a fragment written by MarshalJSON. Fragments have
// no decoding method so that a frozen fragment cannot be overwritten.
func DecodeFragment(b []byte) (*Fragment, error) {
	var raw fragmentJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("qlearn: decode fragment: %w", err)
	}
	f := &Fragment{agent: raw.Agent, tier: raw.Tier, owner: raw.Owner, q: make(map[Key]float64, len(raw.Entries))}
	for _, e := range raw.Entries {
		f.q[Key{e.Goal, e.Action}] = e.Value
	}
	f.index()

	return f, nil
}
