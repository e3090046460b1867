// SPDX-License-Identifier: MIT

// Command quikdel builds a two-tier delivery network for a city, trains its
// routing agents and simulates deliveries over it.
//
// Usage:
//
//	quikdel build    -input city.json [-config quikdel.yaml]
//	quikdel train    -input city.json [-skip-build]
//	quikdel simulate -input city.json [-requests reqs.json] [-ablation] [-skip-build] [-skip-train]
//	quikdel run      -input city.json [-ablation]
//	quikdel version
//
// With a store path configured (store.path / QUIKDEL_STORE_PATH) each stage
// persists its artifacts and the -skip flags load them instead of rebuilding.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/config"
	"github.com/katalvlaran/quikdel/dispatch"
	"github.com/katalvlaran/quikdel/internal/app"
	"github.com/katalvlaran/quikdel/internal/logging"
	"github.com/katalvlaran/quikdel/internal/metrics"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
	"github.com/katalvlaran/quikdel/store"
)

// Version is injected at build time.
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "build", "train", "simulate", "run":
		if err := runStage(cmd, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "quikdel %s: %v\n", cmd, err)
			os.Exit(1)
		}
	case "version":
		fmt.Println("quikdel", Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: quikdel <command> [flags]

commands:
  build     place hotspots, select superspots, balance clusters
  train     formulate and train the hotspot and superspot agents
  simulate  dispatch requests over the trained network
  run       build, train and simulate in one go
  version   print the version`)
}

type stageFlags struct {
	config    string
	dotEnv    string
	input     string
	requests  string
	out       string
	ablation  bool
	skipBuild bool
	skipTrain bool
}

func parseFlags(cmd string, args []string) (stageFlags, error) {
	var f stageFlags
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "path to YAML config file")
	fs.StringVar(&f.dotEnv, "env", ".env", "path to .env file")
	fs.StringVar(&f.input, "input", "", "path to city JSON")
	fs.StringVar(&f.out, "out", "", "write the JSON report here instead of stdout")
	if cmd == "simulate" || cmd == "run" {
		fs.StringVar(&f.requests, "requests", "", "path to request JSON (default: generated)")
		fs.BoolVar(&f.ablation, "ablation", false, "also run without ride-sharing and compare")
	}
	if cmd == "train" || cmd == "simulate" {
		fs.BoolVar(&f.skipBuild, "skip-build", false, "load the network from the store")
	}
	if cmd == "simulate" {
		fs.BoolVar(&f.skipTrain, "skip-train", false, "load the policies from the store")
	}
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.input == "" {
		return f, fmt.Errorf("-input is required")
	}

	return f, nil
}

func runStage(cmd string, args []string) error {
	f, err := parseFlags(cmd, args)
	if err != nil {
		return err
	}

	loader := config.NewLoader().WithDotEnv(f.dotEnv)
	if f.config != "" {
		loader = loader.WithConfigPath(f.config)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &app.Pipeline{Config: cfg, Logger: logger}
	if cfg.Store.Path != "" {
		st, err := store.NewStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		p.Store = st
	}
	if p.Metrics, err = metrics.NewCollector("quikdel", nil, logger); err != nil {
		return err
	}

	in, err := readInput(f.input)
	if err != nil {
		return err
	}

	// 1) Network.
	var net *network.Network
	if f.skipBuild || f.skipTrain {
		if p.Store == nil {
			return app.ErrNoStore
		}
		if net, err = p.Store.LoadNetwork(ctx, in.City, cfg.Network.Ratio); err != nil {
			return err
		}
		logger.Info("network loaded", zap.String("city", in.City))
	} else if net, err = p.Build(ctx, in); err != nil {
		return err
	}
	if cmd == "build" {
		return writeReport(f.out, net)
	}

	// 2) Policies.
	var pol *qlearn.Policies
	if f.skipTrain {
		if pol, err = p.Store.LoadPolicies(ctx, in.City, cfg.Network.Ratio); err != nil {
			return err
		}
		logger.Info("policies loaded", zap.Int("fragments", len(pol.All())))
	} else if pol, err = p.Train(ctx, net); err != nil {
		return err
	}
	for _, w := range pol.Warnings {
		logger.Warn("convergence", zap.String("warning", w.String()))
	}
	if cmd == "train" {
		return writeReport(f.out, map[string]any{
			"city":      net.City,
			"fragments": len(pol.All()),
			"entries":   pol.Entries(),
			"warnings":  len(pol.Warnings),
		})
	}

	// 3) Simulation.
	var reqs []dispatch.Request
	if f.requests != "" {
		r, err := os.Open(f.requests)
		if err != nil {
			return err
		}
		reqs, err = app.DecodeRequests(r)
		r.Close()
		if err != nil {
			return err
		}
	}
	rep, err := p.Simulate(ctx, net, pol, reqs, f.ablation)
	if err != nil {
		return err
	}

	return writeReport(f.out, rep)
}

func readInput(path string) (network.Input, error) {
	r, err := os.Open(path)
	if err != nil {
		return network.Input{}, err
	}
	defer r.Close()

	return network.DecodeInput(r)
}

func writeReport(path string, v any) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
