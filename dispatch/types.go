// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
)

// Sentinel errors.
var (
	// ErrNoRoute indicates an origin or destination outside the network.
	ErrNoRoute = errors.New("dispatch: no route")

	// ErrPolicyGap indicates that an agent on the path has no usable entry,
	// even after the nearest-known-goal fallback.
	ErrPolicyGap = errors.New("dispatch: policy gap")

	// ErrBadTransition indicates an illegal request status change.
	ErrBadTransition = errors.New("dispatch: illegal status transition")

	// ErrBadOption indicates an invalid simulator or generator option.
	ErrBadOption = errors.New("dispatch: invalid option")

	// ErrNotReady indicates a simulator without network or policies.
	ErrNotReady = errors.New("dispatch: network and policies are required")
)

// CourierCapacity is the most requests a courier carries at once.
const CourierCapacity = 2

// Status is the lifecycle state of a delivery request.
type Status int

const (
	StatusCreated Status = iota
	StatusQueued
	StatusInTransit
	StatusShared
	StatusCompleted
	StatusExpired
)

var statusNames = [...]string{"created", "queued", "in_transit", "shared", "completed", "expired"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	for i, n := range statusNames {
		if n == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("dispatch: unknown status %q", b)
}

// Terminal reports whether s is Completed or Expired.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusExpired }

// transitions lists the legal successor states.
var transitions = map[Status][]Status{
	StatusCreated:   {StatusQueued, StatusExpired},
	StatusQueued:    {StatusInTransit, StatusExpired},
	StatusInTransit: {StatusShared, StatusCompleted, StatusExpired},
	StatusShared:    {StatusCompleted, StatusExpired},
}

// Request is one delivery order.
type Request struct {
	ID          int            `json:"id"`
	Origin      core.HotspotID `json:"origin"`
	Destination core.HotspotID `json:"destination"`
	CreatedAt   float64        `json:"created_at"`
	Deadline    float64        `json:"deadline"`
	Status      Status         `json:"status"`
	CompletedAt float64        `json:"completed_at,omitempty"`
	Shared      bool           `json:"shared,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

// Advance moves the request to next if the lifecycle allows it. Terminal
// requests never change again.
func (r *Request) Advance(next Status) error {
	for _, s := range transitions[r.Status] {
		if s == next {
			r.Status = next
			if next == StatusShared {
				r.Shared = true
			}
			return nil
		}
	}
	return fmt.Errorf("%w: request %d %s → %s", ErrBadTransition, r.ID, r.Status, next)
}

// expire marks a non-terminal request Expired with reason.
func (r *Request) expire(reason string) bool {
	if r.Status.Terminal() {
		return false
	}
	r.Status = StatusExpired
	r.Reason = reason
	return true
}

// Observer receives execution telemetry; implementations must be safe for
// concurrent use. rideSharing tells the runs of an ablation apart.
type Observer interface {
	ObserveRequest(rideSharing bool, status string, latency float64)
	ObserveMerge(outcome string)
}

// Options configures the Simulator.
//
//	Tick               – logical clock step (default 1).
//	Horizon            – simulation end; open requests expire there (default 480).
//	RideSharing        – enable negotiation (default true).
//	RideShareThreshold – minimum overlap ratio for a merge (default 0.44).
//	TimeWindow         – max arrival gap at the meeting hotspot (default 5).
//	PASSize            – top-k actions forming a courier's PAS (default 3).
//	Workers            – routing/PAS fan-out bound (default 8).
type Options struct {
	Tick               float64
	Horizon            float64
	RideSharing        bool
	RideShareThreshold float64
	TimeWindow         float64
	PASSize            int
	Workers            int
	Logger             *zap.Logger
	Observer           Observer
	TickHook           func(now float64, couriers []Courier)
}

// Option configures Options.
type Option func(*Options)

// WithTick sets the clock step.
func WithTick(d float64) Option { return func(o *Options) { o.Tick = d } }

// WithHorizon sets the simulation end.
func WithHorizon(h float64) Option { return func(o *Options) { o.Horizon = h } }

// WithRideSharing toggles negotiation.
func WithRideSharing(on bool) Option { return func(o *Options) { o.RideSharing = on } }

// WithRideShareThreshold sets the minimum overlap ratio.
func WithRideShareThreshold(t float64) Option { return func(o *Options) { o.RideShareThreshold = t } }

// WithTimeWindow sets the arrival compatibility window.
func WithTimeWindow(w float64) Option { return func(o *Options) { o.TimeWindow = w } }

// WithPASSize sets k for the preferred action set.
func WithPASSize(k int) Option { return func(o *Options) { o.PASSize = k } }

// WithWorkers bounds the parallel routing fan-out.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithObserver attaches a telemetry observer.
func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithTickHook installs a callback that sees a copy of every courier at the
// end of each tick.
func WithTickHook(fn func(now float64, couriers []Courier)) Option {
	return func(o *Options) { o.TickHook = fn }
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Tick:               1,
		Horizon:            480,
		RideSharing:        true,
		RideShareThreshold: 0.44,
		TimeWindow:         5,
		PASSize:            3,
		Workers:            8,
		Logger:             zap.NewNop(),
	}
}

func (o Options) validate() error {
	switch {
	case !(o.Tick > 0) || math.IsInf(o.Tick, 0):
		return fmt.Errorf("%w: tick must be > 0", ErrBadOption)
	case !(o.Horizon > 0) || math.IsInf(o.Horizon, 0):
		return fmt.Errorf("%w: horizon must be > 0", ErrBadOption)
	case !(o.RideShareThreshold >= 0 && o.RideShareThreshold <= 1):
		return fmt.Errorf("%w: ride_share_threshold must be in [0,1]", ErrBadOption)
	case o.TimeWindow < 0:
		return fmt.Errorf("%w: time window must be ≥ 0", ErrBadOption)
	case o.PASSize < 1:
		return fmt.Errorf("%w: PAS size must be ≥ 1", ErrBadOption)
	case o.Workers < 1:
		return fmt.Errorf("%w: workers must be ≥ 1", ErrBadOption)
	}

	return nil
}
