// SPDX-License-Identifier: MIT

package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/katalvlaran/quikdel/config"
	"github.com/katalvlaran/quikdel/internal/logging"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quikdel.log")
	log, err := logging.New(config.LogConfig{Level: "info", Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("network built", zap.Int("superspots", 2))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "network built", entry["msg"])
	assert.Equal(t, "quikdel", entry["service"])
	assert.EqualValues(t, 2, entry["superspots"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_Defaults(t *testing.T) {
	log, err := logging.New(config.DefaultConfig().Log)
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logging.New(config.LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
