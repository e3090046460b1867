// SPDX-License-Identifier: MIT

package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/config"
	"github.com/katalvlaran/quikdel/dispatch"
	"github.com/katalvlaran/quikdel/internal/testcity"
	"github.com/katalvlaran/quikdel/mdp"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
)

func TestOptions_DrivePipeline(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Network.Ratio = 5
	cfg.Training.Episodes = 20
	cfg.Simulation.TotalDeliveries = 5
	log := zap.NewNop()

	in, err := testcity.Line(10, map[int]int{2: 3}, map[int]int{7: 3})
	require.NoError(t, err)
	net, err := network.Build(ctx, in, cfg.NetworkOptions(log)...)
	require.NoError(t, err)
	assert.Equal(t, 5.0, net.Ratio)

	set, err := mdp.Formulate(net, cfg.MDPOptions(log)...)
	require.NoError(t, err)
	pol, err := qlearn.TrainAll(ctx, set, cfg.TrainingOptions(log, nil)...)
	require.NoError(t, err)

	sim, err := dispatch.NewSimulator(net, pol, cfg.SimulationOptions(log, nil)...)
	require.NoError(t, err)
	reqs, err := cfg.Generator().Generate(net)
	require.NoError(t, err)
	assert.Len(t, reqs, 5)

	res, err := sim.Run(ctx, reqs)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
}
