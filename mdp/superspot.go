// SPDX-License-Identifier: MIT

package mdp

import (
	"fmt"

	"github.com/katalvlaran/quikdel/core"
)

// SuperspotProcess is MDP_s over all superspots. Goals are superspots.
type SuperspotProcess struct {
	*locality
}

var _ Process = (*SuperspotProcess)(nil)

// Goals implements Process.
func (p *SuperspotProcess) Goals() []core.HotspotID { return p.Nodes() }

// Actions implements Process.
func (p *SuperspotProcess) Actions(node, goal core.HotspotID) []core.HotspotID {
	if !p.member[node] || node == goal {
		return nil
	}
	return append([]core.HotspotID(nil), p.moves[node]...)
}

// Step implements Process.
func (p *SuperspotProcess) Step(node, goal, action core.HotspotID) (Transition, error) {
	if !p.member[goal] {
		return Transition{}, fmt.Errorf("%w: goal %d is not a superspot", ErrInvalidAction, goal)
	}
	return p.move(node, goal, action)
}
