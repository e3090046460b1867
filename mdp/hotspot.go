// SPDX-License-Identifier: MIT

package mdp

import (
	"fmt"
	"math"

	"github.com/katalvlaran/quikdel/core"
)

// HotspotProcess is MDP_h for one cluster. Goals are the cluster members plus
// GoalExit; with GoalExit the agent may also ascend to the superspot.
type HotspotProcess struct {
	*locality
	goals []core.HotspotID
}

var _ Process = (*HotspotProcess)(nil)

// Goals implements Process. GoalExit comes first.
func (p *HotspotProcess) Goals() []core.HotspotID {
	return append([]core.HotspotID(nil), p.goals...)
}

// Actions implements Process: locality moves, plus ActionAscend when the goal
// is GoalExit. Reaching the goal ends the episode, so a node that already is
// the goal has no actions.
func (p *HotspotProcess) Actions(node, goal core.HotspotID) []core.HotspotID {
	if !p.member[node] || node == goal {
		return nil
	}
	moves := p.moves[node]
	if goal != GoalExit {
		return append([]core.HotspotID(nil), moves...)
	}
	out := make([]core.HotspotID, 0, len(moves)+1)
	out = append(out, ActionAscend)

	return append(out, moves...)
}

// Step implements Process.
func (p *HotspotProcess) Step(node, goal, action core.HotspotID) (Transition, error) {
	if action != ActionAscend {
		if goal != GoalExit && !p.member[goal] {
			return Transition{}, fmt.Errorf("%w: goal %d outside cluster %d", ErrInvalidAction, goal, p.owner)
		}
		return p.move(node, goal, action)
	}

	if !p.member[node] {
		return Transition{}, fmt.Errorf("%w: %d", ErrUnknownAgent, node)
	}
	if goal != GoalExit {
		return Transition{}, fmt.Errorf("%w: ascend requires the exit goal", ErrInvalidAction)
	}
	d := 0.0
	if node != p.owner {
		d = travel(p.oracle, p.cost, node, p.owner)
		if math.IsInf(d, 1) {
			return Transition{}, fmt.Errorf("%w: %d cannot reach superspot %d", ErrInvalidAction, node, p.owner)
		}
	}

	return Transition{Next: p.owner, Reward: -d/p.norm + p.bonus, Terminal: true}, nil
}

// Members returns the cluster members in ascending order.
func (p *HotspotProcess) Members() []core.HotspotID { return p.Nodes() }
