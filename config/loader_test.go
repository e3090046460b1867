// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/quikdel/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.Equal(t, 10.0, cfg.Network.Ratio)
	assert.Equal(t, 0.44, cfg.Simulation.RideShareThreshold)
	assert.Equal(t, "minmax", cfg.Network.Normalization)
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := config.NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, "quikdel.yaml", `
network:
  ratio: 5
  ses_weights:
    bordering: 0.5
training:
  episodes: 300
simulation:
  ride_sharing: false
log:
  level: debug
  output_paths: [stdout]
`)
	t.Setenv("QUIKDEL_TRAINING_EPISODES", "450")
	t.Setenv("QUIKDEL_NETWORK_SES_WEIGHTS_PRODUCERS", "0.7")
	t.Setenv("QUIKDEL_LOG_OUTPUT_PATHS", "stderr, /tmp/quikdel.log")
	t.Setenv("QUIKDEL_TRAINING_SEED", "9")

	cfg, err := config.NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Network.Ratio)
	assert.Equal(t, 0.5, cfg.Network.SESWeights.Bordering)
	assert.Equal(t, 0.7, cfg.Network.SESWeights.Producers)
	assert.Equal(t, 0.4, cfg.Network.SESWeights.Consumers, "untouched keys keep defaults")
	assert.Equal(t, 450, cfg.Training.Episodes, "env wins over file")
	assert.Equal(t, uint64(9), cfg.Training.Seed)
	assert.False(t, cfg.Simulation.RideSharing)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"stderr", "/tmp/quikdel.log"}, cfg.Log.OutputPaths)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "QUIKDEL_MDP_NEIGHBORS"
	t.Cleanup(func() { os.Unsetenv(key) })
	path := writeFile(t, ".env", key+"=6\n")

	cfg, err := config.NewLoader().WithDotEnv(path, filepath.Join(t.TempDir(), "missing.env")).Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MDP.Neighbors)
}

func TestLoad_CustomPrefix(t *testing.T) {
	t.Setenv("QD_SIMULATION_HORIZON", "120")
	cfg, err := config.NewLoader().WithEnvPrefix("QD").Load()
	require.NoError(t, err)
	assert.Equal(t, 120.0, cfg.Simulation.Horizon)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"QUIKDEL_NETWORK_RATIO":                   "0.5",
		"QUIKDEL_NETWORK_NORMALIZATION":           "rank",
		"QUIKDEL_TRAINING_ALPHA":                  "1.5",
		"QUIKDEL_TRAINING_MIN_TEMPERATURE":        "5",
		"QUIKDEL_SIMULATION_RIDE_SHARE_THRESHOLD": "2",
		"QUIKDEL_MDP_COST":                        "fuel",
		"QUIKDEL_LOG_LEVEL":                       "chatty",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := config.NewLoader().Load()
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("QUIKDEL_TRAINING_EPISODES", "many")
	_, err := config.NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIKDEL_TRAINING_EPISODES")
}

func TestLoad_CustomValidator(t *testing.T) {
	_, err := config.NewLoader().WithValidator(func(c *config.Config) error {
		if c.Store.Path == "" {
			return assert.AnError
		}
		return nil
	}).Load()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "broken.yaml", "network: [")
	_, err := config.NewLoader().WithConfigPath(path).Load()
	assert.Error(t, err)
}
