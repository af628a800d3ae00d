package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probecnc.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
feed_rate = 30.0
start_distance = 40.0

[[tools]]
number = 99
type = "touch-probe"
length_offset = 24.0
`), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.FeedRate)
	assert.Equal(t, 40.0, cfg.StartDistance)
	// unset keys keep defaults
	assert.Equal(t, 10.0, cfg.Depth)
	assert.Equal(t, 5.0, cfg.Retract)

	run := cfg.buildRun(runParams{ToolNumber: 99})
	assert.Equal(t, 12.0, run.Depth) // half the probe length offset
	assert.Equal(t, 40.0, run.StartDistance)
	assert.Equal(t, 30.0, run.FeedRate)

	run = cfg.buildRun(runParams{ToolNumber: 1, Depth: 7})
	assert.Equal(t, 7.0, run.Depth)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}
