// SPDX-License-Identifier: MIT

package mdp

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
)

// Sentinel errors.
var (
	// ErrNoNetwork indicates a nil network or a network without an oracle.
	ErrNoNetwork = errors.New("mdp: network is nil or has no oracle")

	// ErrUnknownAgent indicates a node outside the process.
	ErrUnknownAgent = errors.New("mdp: node is not part of this process")

	// ErrInvalidAction indicates an action that is not legal for (node, goal).
	ErrInvalidAction = errors.New("mdp: action not allowed in this state")

	// ErrBadOption indicates an invalid formulation option.
	ErrBadOption = errors.New("mdp: invalid option")
)

// Tier tells which level of the network a process or agent belongs to.
type Tier int

const (
	// TierHotspot is the intra-cluster level (MDP_h).
	TierHotspot Tier = iota

	// TierSuperspot is the inter-cluster level (MDP_s).
	TierSuperspot
)

// String returns "hotspot" or "superspot".
func (t Tier) String() string {
	switch t {
	case TierHotspot:
		return "hotspot"
	case TierSuperspot:
		return "superspot"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "hotspot":
		*t = TierHotspot
	case "superspot":
		*t = TierSuperspot
	default:
		return fmt.Errorf("mdp: unknown tier %q", b)
	}
	return nil
}

const (
	// GoalExit is the synthetic goal of an MDP_h meaning "leave the cluster".
	GoalExit core.HotspotID = -1

	// ActionAscend hands the request to the cluster's superspot. It is only
	// available while the goal is GoalExit and always terminates the episode.
	ActionAscend core.HotspotID = -2
)

// CostKind selects which travel component drives rewards.
type CostKind string

const (
	// CostDistance uses Travel.Distance.
	CostDistance CostKind = "distance"

	// CostTime uses Travel.Time.
	CostTime CostKind = "time"
)

// Transition is the outcome of taking an action.
type Transition struct {
	Next     core.HotspotID // node the request is at afterwards
	Reward   float64
	Terminal bool
}

// Process is a decentralized decision process. Each node hosts one agent
// whose state is (node, goal); the node is implicit in the agent.
//
// Implementations are immutable after Formulate and safe for concurrent use.
type Process interface {
	// Tier reports the network level of the process.
	Tier() Tier

	// Owner returns the cluster's superspot for MDP_h and NoHotspot for MDP_s.
	Owner() core.HotspotID

	// Nodes lists agent nodes in ascending id order.
	Nodes() []core.HotspotID

	// Goals lists goals in ascending order (GoalExit first for MDP_h).
	Goals() []core.HotspotID

	// Actions lists legal actions for (node, goal) in ascending order.
	Actions(node, goal core.HotspotID) []core.HotspotID

	// Step applies action at (node, goal).
	Step(node, goal, action core.HotspotID) (Transition, error)

	// Normalizer is the cost scale that move rewards are divided by.
	Normalizer() float64
}

// Options configures Formulate.
//
//	Neighbors    – k nearest cluster members each hotspot may move to (default 4).
//	Window       – k nearest superspots each superspot may move to (default 4).
//	ArrivalBonus – reward added on reaching the goal or ascending (default 10).
//	Cost         – CostDistance (default) or CostTime.
type Options struct {
	Neighbors    int
	Window       int
	ArrivalBonus float64
	Cost         CostKind
	Logger       *zap.Logger
}

// Option configures Options.
type Option func(*Options)

// WithNeighbors sets the hotspot locality size.
func WithNeighbors(k int) Option { return func(o *Options) { o.Neighbors = k } }

// WithWindow sets the superspot locality size.
func WithWindow(k int) Option { return func(o *Options) { o.Window = k } }

// WithArrivalBonus sets the terminal reward.
func WithArrivalBonus(b float64) Option { return func(o *Options) { o.ArrivalBonus = b } }

// WithCost selects the reward cost component.
func WithCost(c CostKind) Option { return func(o *Options) { o.Cost = c } }

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option { return func(o *Options) { o.Logger = l } }

// DefaultOptions returns Neighbors 4, Window 4, ArrivalBonus 10, CostDistance.
func DefaultOptions() Options {
	return Options{
		Neighbors:    4,
		Window:       4,
		ArrivalBonus: 10,
		Cost:         CostDistance,
		Logger:       zap.NewNop(),
	}
}

func (o Options) validate() error {
	switch {
	case o.Neighbors < 1:
		return fmt.Errorf("%w: neighbors must be ≥ 1, got %d", ErrBadOption, o.Neighbors)
	case o.Window < 1:
		return fmt.Errorf("%w: window must be ≥ 1, got %d", ErrBadOption, o.Window)
	case o.ArrivalBonus < 0:
		return fmt.Errorf("%w: arrival bonus must be ≥ 0", ErrBadOption)
	case o.Cost != CostDistance && o.Cost != CostTime:
		return fmt.Errorf("%w: unknown cost %q", ErrBadOption, o.Cost)
	}

	return nil
}
