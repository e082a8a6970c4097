package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mech-arena/server/internal/visibility"
	"mech-arena/server/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTickRate, cfg.TickRate)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, visibility.DefaultConfig(), cfg.Visibility)
	assert.Equal(t, cfg.Seed, cfg.World.Seed)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
seed: dunes
tick_rate: 20
visibility:
  ray_count: 36
  update_every_ticks: 2
  interior:
    max_distance: 150
world:
  structures: 2
logging:
  min_severity: debug
  sinks: [console, zap]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dunes", cfg.Seed)
	assert.Equal(t, "dunes", cfg.World.Seed)
	assert.Equal(t, 2, cfg.World.Structures)
	assert.Equal(t, 36, cfg.Visibility.RayCount)
	assert.Equal(t, 2, cfg.Visibility.UpdateEveryTicks)
	assert.Equal(t, 150.0, cfg.Visibility.Interior.MaxDistance)
	assert.Equal(t, 0.8, cfg.Visibility.WindowFactor, "unset keys keep defaults")
	assert.Equal(t, 8.0, cfg.Visibility.RangeTiles)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval())

	routerCfg := cfg.LoggingRouterConfig()
	assert.Equal(t, logging.SeverityDebug, routerCfg.MinimumSeverity)
	assert.True(t, routerCfg.HasSink("zap"))
	assert.Equal(t, "dunes", routerCfg.Fields["seed"])
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = Load(writeConfig(t, "tick_rate: [not, a, number]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.yaml")

	_, err = Load(writeConfig(t, "logging:\n  min_severity: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestNormalizedRepairsBadValues(t *testing.T) {
	cfg := Config{TickRate: -5, FeedIntervalTicks: 0, Walkers: -1}.Normalized()
	assert.Equal(t, DefaultTickRate, cfg.TickRate)
	assert.Equal(t, DefaultFeedIntervalTicks, cfg.FeedIntervalTicks)
	assert.Equal(t, 0, cfg.Walkers)
	assert.Equal(t, []string{"console"}, cfg.Logging.Sinks)
	assert.Equal(t, 72, cfg.Visibility.RayCount)
	assert.Positive(t, cfg.Spatial.PlayerCellTiles)
}
