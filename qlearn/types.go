// SPDX-License-Identifier: MIT

package qlearn

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/mdp"
)

// Sentinel errors.
var (
	// ErrBadOption indicates an invalid training option.
	ErrBadOption = errors.New("qlearn: invalid option")

	// ErrNilProcess indicates a nil process or process set.
	ErrNilProcess = errors.New("qlearn: nil process")
)

// Key addresses one Q entry of an agent: the goal it routes toward and the
// action it takes. The agent's node is implicit.
type Key struct {
	Goal   core.HotspotID
	Action core.HotspotID
}

// Entry is one learned Q value.
type Entry struct {
	Goal   core.HotspotID `json:"goal"`
	Action core.HotspotID `json:"action"`
	Value  float64        `json:"q"`
}

// Observer receives training telemetry. Implementations must be safe for
// concurrent use because TrainAll trains processes in parallel.
type Observer interface {
	ObserveEpisode(tier string, reward float64, steps int)
	ObserveFragment(tier string, entries int)
}

// Options configures Train and TrainAll.
//
//	Alpha           – learning rate in (0,1] (default 0.1).
//	Gamma           – discount in [0,1] (default 0.9).
//	Episodes        – episodes per process (default 1000).
//	TemperatureInit – initial Boltzmann temperature (default 1.0).
//	DecayRate       – per-episode multiplicative decay in (0,1] (default 0.995).
//	MinTemperature  – temperature floor, > 0 (default 1e-3).
//	MaxSteps        – step cap per episode (default 100).
//	Seed            – base seed; TrainAll derives one seed per process.
//	Workers         – TrainAll concurrency bound (default GOMAXPROCS).
type Options struct {
	Alpha           float64
	Gamma           float64
	Episodes        int
	TemperatureInit float64
	DecayRate       float64
	MinTemperature  float64
	MaxSteps        int
	Seed            uint64
	Workers         int
	Logger          *zap.Logger
	Observer        Observer
}

// Option configures Options.
type Option func(*Options)

// WithAlpha sets the learning rate.
func WithAlpha(a float64) Option { return func(o *Options) { o.Alpha = a } }

// WithGamma sets the discount factor.
func WithGamma(g float64) Option { return func(o *Options) { o.Gamma = g } }

// WithEpisodes sets the episode count per process.
func WithEpisodes(n int) Option { return func(o *Options) { o.Episodes = n } }

// WithTemperature sets the initial temperature.
func WithTemperature(t float64) Option { return func(o *Options) { o.TemperatureInit = t } }

// WithDecayRate sets the per-episode temperature decay.
func WithDecayRate(r float64) Option { return func(o *Options) { o.DecayRate = r } }

// WithMinTemperature sets the temperature floor.
func WithMinTemperature(t float64) Option { return func(o *Options) { o.MinTemperature = t } }

// WithMaxSteps caps the steps of one episode.
func WithMaxSteps(n int) Option { return func(o *Options) { o.MaxSteps = n } }

// WithSeed sets the base seed.
func WithSeed(s uint64) Option { return func(o *Options) { o.Seed = s } }

// WithWorkers bounds TrainAll concurrency.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithObserver attaches a telemetry observer.
func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Alpha:           0.1,
		Gamma:           0.9,
		Episodes:        1000,
		TemperatureInit: 1.0,
		DecayRate:       0.995,
		MinTemperature:  1e-3,
		MaxSteps:        100,
		Seed:            42,
		Workers:         runtime.GOMAXPROCS(0),
		Logger:          zap.NewNop(),
	}
}

func resolve(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	switch {
	case !(o.Alpha > 0 && o.Alpha <= 1):
		return o, fmt.Errorf("%w: alpha must be in (0,1], got %v", ErrBadOption, o.Alpha)
	case !(o.Gamma >= 0 && o.Gamma <= 1):
		return o, fmt.Errorf("%w: gamma must be in [0,1], got %v", ErrBadOption, o.Gamma)
	case o.Episodes < 1:
		return o, fmt.Errorf("%w: episodes must be ≥ 1", ErrBadOption)
	case !(o.MinTemperature > 0) || math.IsInf(o.MinTemperature, 0):
		return o, fmt.Errorf("%w: min temperature must be > 0", ErrBadOption)
	case !(o.TemperatureInit >= o.MinTemperature) || math.IsInf(o.TemperatureInit, 0):
		return o, fmt.Errorf("%w: temperature must be ≥ min temperature", ErrBadOption)
	case !(o.DecayRate > 0 && o.DecayRate <= 1):
		return o, fmt.Errorf("%w: decay rate must be in (0,1], got %v", ErrBadOption, o.DecayRate)
	case o.MaxSteps < 1:
		return o, fmt.Errorf("%w: max steps must be ≥ 1", ErrBadOption)
	case o.Workers < 1:
		return o, fmt.Errorf("%w: workers must be ≥ 1", ErrBadOption)
	}

	return o, nil
}

// Schedule is the exponential temperature schedule T_e = max(T₀·decay^e, floor).
type Schedule struct {
	Init  float64
	Decay float64
	Floor float64
}

// At returns the temperature for episode e (0-based). It never returns 0.
func (s Schedule) At(e int) float64 {
	return math.Max(s.Init*math.Pow(s.Decay, float64(e)), s.Floor)
}

// Agent is the training-time view of one decision maker. Temperature decays
// after every episode the agent acts in; the agent is discarded once its
// table is frozen.
type Agent struct {
	ID          core.HotspotID
	Tier        mdp.Tier
	Temperature float64
	Episodes    int
}

// ConvergenceWarning lists goals an agent could pursue but never recorded a
// value for. It is informative; the fragment is still usable.
type ConvergenceWarning struct {
	Tier         mdp.Tier         `json:"tier"`
	Owner        core.HotspotID   `json:"owner"`
	Agent        core.HotspotID   `json:"agent"`
	MissingGoals []core.HotspotID `json:"missing_goals"`
}

func (w ConvergenceWarning) String() string {
	return fmt.Sprintf("%s agent %d (owner %d): %d goals never visited %v",
		w.Tier, w.Agent, w.Owner, len(w.MissingGoals), w.MissingGoals)
}

// EpisodeStat is one line of the diagnostic episode log.
type EpisodeStat struct {
	Episode     int            `json:"episode"`
	Start       core.HotspotID `json:"start"`
	Goal        core.HotspotID `json:"goal"`
	Reward      float64        `json:"reward"`
	Steps       int            `json:"steps"`
	Temperature float64        `json:"temperature"`
}
