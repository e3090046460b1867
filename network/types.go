// SPDX-License-Identifier: MIT

package network

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/matrix"
)

// Sentinel errors. DataError and BalanceError match them via errors.Is.
var (
	// ErrData indicates malformed or degenerate input; no network is produced.
	ErrData = errors.New("network: bad input data")

	// ErrBalance indicates that spacing, ratio and min_children cannot be
	// satisfied together. Callers may retry with relaxed parameters.
	ErrBalance = errors.New("network: clustering constraints unsatisfiable")

	// ErrBadOption indicates an invalid builder option.
	ErrBadOption = errors.New("network: invalid option")

	// ErrNoOracle indicates a network without an attached distance oracle.
	ErrNoOracle = errors.New("network: no distance oracle attached")
)

// DataError reports degenerate input such as an empty tract or a hotspot with
// no reachable neighbor.
type DataError struct {
	Reason string // what is wrong
	Ref    string // offending tract or site id, if any
}

func (e *DataError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s: %s", ErrData, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrData, e.Reason, e.Ref)
}

// Unwrap lets errors.Is(err, ErrData) match.
func (e *DataError) Unwrap() error { return ErrData }

// BalanceError reports the cluster that could not be balanced.
type BalanceError struct {
	Cluster core.HotspotID // superspot of the offending cluster, NoHotspot if global
	Size    int
	Reason  string
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: cluster %d (size %d): %s", ErrBalance, e.Cluster, e.Size, e.Reason)
}

// Unwrap lets errors.Is(err, ErrBalance) match.
func (e *BalanceError) Unwrap() error { return ErrBalance }

// Normalization selects how SES components are scaled into [0,1].
type Normalization string

const (
	// MinMax scales (x-min)/(max-min); a degenerate range maps to 0.
	MinMax Normalization = "minmax"

	// ZScore squashes (x-mean)/std through the logistic function; std=0 maps to 0.5.
	ZScore Normalization = "zscore"
)

// SESWeights weighs the three SES components. They are re-normalized to sum to 1.
type SESWeights struct {
	Producers float64 `json:"producers" yaml:"producers"`
	Consumers float64 `json:"consumers" yaml:"consumers"`
	Bordering float64 `json:"bordering" yaml:"bordering"`
}

// Options configures Build.
//
//	Ratio            – target hotspots per superspot (target count = round(H/Ratio)).
//	MinChildren      – minimum cluster size, superspot included.
//	SpacingThreshold – minimum distance between any two superspots (both directions).
//	CapacitySlack    – cluster cap = ceil(Ratio × CapacitySlack), never below MinChildren.
//	Weights          – SES component weights.
//	Normalization    – MinMax (default) or ZScore.
type Options struct {
	Ratio            float64
	MinChildren      int
	SpacingThreshold float64
	CapacitySlack    float64
	Weights          SESWeights
	Normalization    Normalization
	Logger           *zap.Logger
}

// Option configures Options.
type Option func(*Options)

// WithRatio sets the hotspot-to-superspot ratio.
func WithRatio(r float64) Option { return func(o *Options) { o.Ratio = r } }

// WithMinChildren sets the minimum cluster size.
func WithMinChildren(n int) Option { return func(o *Options) { o.MinChildren = n } }

// WithSpacingThreshold sets the minimum superspot spacing.
func WithSpacingThreshold(d float64) Option { return func(o *Options) { o.SpacingThreshold = d } }

// WithCapacitySlack sets the cap multiplier over Ratio.
func WithCapacitySlack(s float64) Option { return func(o *Options) { o.CapacitySlack = s } }

// WithSESWeights overrides the SES component weights.
func WithSESWeights(w SESWeights) Option { return func(o *Options) { o.Weights = w } }

// WithNormalization selects the SES normalization.
func WithNormalization(n Normalization) Option { return func(o *Options) { o.Normalization = n } }

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option { return func(o *Options) { o.Logger = l } }

// DefaultOptions returns the documented defaults:
// Ratio 10, MinChildren 2, SpacingThreshold 0, CapacitySlack 1.5,
// weights (0.4, 0.4, 0.2), MinMax normalization, no-op logger.
func DefaultOptions() Options {
	return Options{
		Ratio:            10,
		MinChildren:      2,
		SpacingThreshold: 0,
		CapacitySlack:    1.5,
		Weights:          SESWeights{Producers: 0.4, Consumers: 0.4, Bordering: 0.2},
		Normalization:    MinMax,
		Logger:           zap.NewNop(),
	}
}

func (o Options) validate() error {
	switch {
	case !(o.Ratio >= 1) || math.IsInf(o.Ratio, 0):
		return fmt.Errorf("%w: ratio must be ≥ 1, got %v", ErrBadOption, o.Ratio)
	case o.MinChildren < 1:
		return fmt.Errorf("%w: min_children must be ≥ 1, got %d", ErrBadOption, o.MinChildren)
	case o.SpacingThreshold < 0 || math.IsNaN(o.SpacingThreshold):
		return fmt.Errorf("%w: spacing_threshold must be ≥ 0", ErrBadOption)
	case o.CapacitySlack < 1:
		return fmt.Errorf("%w: capacity_slack must be ≥ 1, got %v", ErrBadOption, o.CapacitySlack)
	case o.Weights.Producers < 0 || o.Weights.Consumers < 0 || o.Weights.Bordering < 0 ||
		o.Weights.Producers+o.Weights.Consumers+o.Weights.Bordering == 0:
		return fmt.Errorf("%w: SES weights must be non-negative and not all zero", ErrBadOption)
	case o.Normalization != MinMax && o.Normalization != ZScore:
		return fmt.Errorf("%w: unknown normalization %q", ErrBadOption, o.Normalization)
	}

	return nil
}

// MaxChildren returns the per-cluster capacity cap derived from ratio.
func MaxChildren(ratio, slack float64, minChildren int) int {
	c := int(math.Ceil(ratio * slack))
	if c < minChildren {
		c = minChildren
	}

	return c
}

// Input is the external data handed over by the extraction collaborator.
// Travel is keyed by tract id and is not modified by Build.
type Input struct {
	City      string
	Tracts    []core.CensusTract
	Producers []core.Site
	Consumers []core.Site
	Travel    *matrix.Matrix
}
