// SPDX-License-Identifier: MIT

package config

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/dispatch"
	"github.com/katalvlaran/quikdel/mdp"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
)

// DefaultConfig mirrors the package defaults of network, mdp, qlearn and
// dispatch.
func DefaultConfig() *Config {
	nw := network.DefaultOptions()
	md := mdp.DefaultOptions()
	ql := qlearn.DefaultOptions()
	sim := dispatch.DefaultOptions()
	gen := dispatch.DefaultGenerator(200)

	return &Config{
		Network: NetworkConfig{
			Ratio:            nw.Ratio,
			MinChildren:      nw.MinChildren,
			SpacingThreshold: nw.SpacingThreshold,
			CapacitySlack:    nw.CapacitySlack,
			Normalization:    string(nw.Normalization),
			SESWeights: SESWeights{
				Producers: nw.Weights.Producers,
				Consumers: nw.Weights.Consumers,
				Bordering: nw.Weights.Bordering,
			},
		},
		MDP: MDPConfig{
			Neighbors:    md.Neighbors,
			Window:       md.Window,
			ArrivalBonus: md.ArrivalBonus,
			Cost:         string(md.Cost),
		},
		Training: TrainingConfig{
			Alpha:           ql.Alpha,
			Gamma:           ql.Gamma,
			Episodes:        ql.Episodes,
			TemperatureInit: ql.TemperatureInit,
			DecayRate:       ql.DecayRate,
			MinTemperature:  ql.MinTemperature,
			MaxSteps:        ql.MaxSteps,
			Seed:            ql.Seed,
		},
		Simulation: SimulationConfig{
			TotalDeliveries:    gen.Count,
			Horizon:            sim.Horizon,
			Tick:               sim.Tick,
			RideSharing:        sim.RideSharing,
			RideShareThreshold: sim.RideShareThreshold,
			TimeWindow:         sim.TimeWindow,
			PASSize:            sim.PASSize,
			Workers:            sim.Workers,
			ReleaseFraction:    gen.ReleaseFraction,
			DeadlineSlack:      gen.DeadlineSlack,
			DeadlineBase:       gen.DeadlineBase,
			Seed:               gen.Seed,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
	}
}

// NetworkOptions converts the network section.
func (c *Config) NetworkOptions(log *zap.Logger) []network.Option {
	n := c.Network
	return []network.Option{
		network.WithRatio(n.Ratio),
		network.WithMinChildren(n.MinChildren),
		network.WithSpacingThreshold(n.SpacingThreshold),
		network.WithCapacitySlack(n.CapacitySlack),
		network.WithNormalization(network.Normalization(n.Normalization)),
		network.WithSESWeights(network.SESWeights{
			Producers: n.SESWeights.Producers,
			Consumers: n.SESWeights.Consumers,
			Bordering: n.SESWeights.Bordering,
		}),
		network.WithLogger(log),
	}
}

// MDPOptions converts the mdp section.
func (c *Config) MDPOptions(log *zap.Logger) []mdp.Option {
	m := c.MDP
	return []mdp.Option{
		mdp.WithNeighbors(m.Neighbors),
		mdp.WithWindow(m.Window),
		mdp.WithArrivalBonus(m.ArrivalBonus),
		mdp.WithCost(mdp.CostKind(m.Cost)),
		mdp.WithLogger(log),
	}
}

// TrainingOptions converts the training section.
func (c *Config) TrainingOptions(log *zap.Logger, obs qlearn.Observer) []qlearn.Option {
	t := c.Training
	opts := []qlearn.Option{
		qlearn.WithAlpha(t.Alpha),
		qlearn.WithGamma(t.Gamma),
		qlearn.WithEpisodes(t.Episodes),
		qlearn.WithTemperature(t.TemperatureInit),
		qlearn.WithDecayRate(t.DecayRate),
		qlearn.WithMinTemperature(t.MinTemperature),
		qlearn.WithMaxSteps(t.MaxSteps),
		qlearn.WithSeed(t.Seed),
		qlearn.WithLogger(log),
	}
	if t.Workers > 0 {
		opts = append(opts, qlearn.WithWorkers(t.Workers))
	}
	if obs != nil {
		opts = append(opts, qlearn.WithObserver(obs))
	}

	return opts
}

// SimulationOptions converts the simulation section.
func (c *Config) SimulationOptions(log *zap.Logger, obs dispatch.Observer) []dispatch.Option {
	s := c.Simulation
	opts := []dispatch.Option{
		dispatch.WithTick(s.Tick),
		dispatch.WithHorizon(s.Horizon),
		dispatch.WithRideSharing(s.RideSharing),
		dispatch.WithRideShareThreshold(s.RideShareThreshold),
		dispatch.WithTimeWindow(s.TimeWindow),
		dispatch.WithPASSize(s.PASSize),
		dispatch.WithWorkers(s.Workers),
		dispatch.WithLogger(log),
	}
	if obs != nil {
		opts = append(opts, dispatch.WithObserver(obs))
	}

	return opts
}

// Generator returns the workload generator of the simulation section.
func (c *Config) Generator() dispatch.Generator {
	s := c.Simulation
	return dispatch.Generator{
		Count:           s.TotalDeliveries,
		Horizon:         s.Horizon,
		ReleaseFraction: s.ReleaseFraction,
		DeadlineSlack:   s.DeadlineSlack,
		DeadlineBase:    s.DeadlineBase,
		Seed:            s.Seed,
	}
}
