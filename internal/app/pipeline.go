// SPDX-License-Identifier: MIT

// Package app wires configuration, storage and telemetry around the
// build → train → simulate pipeline used by cmd/quikdel.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/config"
	"github.com/katalvlaran/quikdel/dispatch"
	"github.com/katalvlaran/quikdel/internal/metrics"
	"github.com/katalvlaran/quikdel/mdp"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
	"github.com/katalvlaran/quikdel/store"
)

// ErrNoStore is returned when a stage must load artifacts but no store is
// configured.
var ErrNoStore = errors.New("app: no store configured")

// Pipeline runs the stages. Store and Metrics are optional.
type Pipeline struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *store.Store
	Metrics *metrics.Collector
}

func (p *Pipeline) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Build constructs the network of in and stores it.
func (p *Pipeline) Build(ctx context.Context, in network.Input) (*network.Network, error) {
	net, err := network.Build(ctx, in, p.Config.NetworkOptions(p.log())...)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	if p.Store != nil {
		if err := p.Store.SaveNetwork(ctx, net, in.Travel); err != nil {
			return nil, fmt.Errorf("save network: %w", err)
		}
	}

	return net, nil
}

// Train formulates and trains every process of net and stores the policies.
func (p *Pipeline) Train(ctx context.Context, net *network.Network) (*qlearn.Policies, error) {
	set, err := mdp.Formulate(net, p.Config.MDPOptions(p.log())...)
	if err != nil {
		return nil, fmt.Errorf("formulate: %w", err)
	}
	var obs qlearn.Observer
	if p.Metrics != nil {
		obs = p.Metrics
	}
	pol, err := qlearn.TrainAll(ctx, set, p.Config.TrainingOptions(p.log(), obs)...)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	if p.Store != nil {
		if err := p.Store.SavePolicies(ctx, net.City, net.Ratio, pol); err != nil {
			return nil, fmt.Errorf("save policies: %w", err)
		}
	}

	return pol, nil
}

// Load restores the network and policies of city at the configured ratio.
func (p *Pipeline) Load(ctx context.Context, city string) (*network.Network, *qlearn.Policies, error) {
	if p.Store == nil {
		return nil, nil, ErrNoStore
	}
	net, err := p.Store.LoadNetwork(ctx, city, p.Config.Network.Ratio)
	if err != nil {
		return nil, nil, err
	}
	pol, err := p.Store.LoadPolicies(ctx, city, p.Config.Network.Ratio)
	if err != nil {
		return net, nil, err
	}

	return net, pol, nil
}

// Report is the outcome of Simulate.
type Report struct {
	City       string               `json:"city"`
	Hotspots   int                  `json:"hotspots"`
	Superspots int                  `json:"superspots"`
	Entries    int                  `json:"policy_entries"`
	Warnings   int                  `json:"convergence_warnings"`
	Result     *dispatch.Result     `json:"result"`
	Baseline   *dispatch.Result     `json:"baseline,omitempty"`
	Comparison *dispatch.Comparison `json:"comparison,omitempty"`
	Metrics    map[string]float64   `json:"metrics,omitempty"`
}

// Simulate runs reqs (generated from the configuration when nil). With
// ablation it also runs the no-ride-sharing baseline and compares. Runs are
// stored when a store is configured.
func (p *Pipeline) Simulate(ctx context.Context, net *network.Network, pol *qlearn.Policies, reqs []dispatch.Request, ablation bool) (*Report, error) {
	if reqs == nil {
		var err error
		if reqs, err = p.Config.Generator().Generate(net); err != nil {
			return nil, fmt.Errorf("generate requests: %w", err)
		}
	}
	var obs dispatch.Observer
	if p.Metrics != nil {
		obs = p.Metrics
	}
	sim, err := dispatch.NewSimulator(net, pol, p.Config.SimulationOptions(p.log(), obs)...)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		City:       net.City,
		Hotspots:   net.Len(),
		Superspots: len(net.Superspots),
		Entries:    pol.Entries(),
		Warnings:   len(pol.Warnings),
	}
	if ablation {
		shared, base, cmp, err := sim.Ablation(ctx, reqs)
		if err != nil {
			return nil, err
		}
		rep.Result, rep.Baseline, rep.Comparison = shared, base, &cmp
	} else if rep.Result, err = sim.Run(ctx, reqs); err != nil {
		return nil, err
	}

	if p.Store != nil {
		for _, res := range []*dispatch.Result{rep.Result, rep.Baseline} {
			if res == nil {
				continue
			}
			if err := p.Store.SaveRun(ctx, res); err != nil {
				return nil, fmt.Errorf("save run: %w", err)
			}
		}
	}
	if p.Metrics != nil {
		rep.Metrics = p.Metrics.Summary()
	}

	return rep, nil
}

// DecodeRequests reads a JSON array of requests.
func DecodeRequests(r io.Reader) ([]dispatch.Request, error) {
	var reqs []dispatch.Request
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	if reqs == nil {
		reqs = []dispatch.Request{}
	}

	return reqs, nil
}
