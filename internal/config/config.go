// Package config loads the server tuning document.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mech-arena/server/internal/observability"
	"mech-arena/server/internal/spatial"
	"mech-arena/server/internal/visibility"
	"mech-arena/server/internal/world"
	"mech-arena/server/logging"
)

const (
	DefaultTickRate          = 30
	DefaultListenAddr        = ":8080"
	DefaultFeedIntervalTicks = 3
	DefaultWalkers           = 6
)

type Config struct {
	Seed              string `yaml:"seed"`
	TickRate          int    `yaml:"tick_rate"`
	ListenAddr        string `yaml:"listen_addr"`
	FeedIntervalTicks int    `yaml:"feed_interval_ticks"`
	// Walkers is the number of demo players circling the arena.
	Walkers int `yaml:"walkers"`

	Spatial    spatial.Config    `yaml:"spatial"`
	Visibility visibility.Config `yaml:"visibility"`
	World      world.Config      `yaml:"world"`
	Logging    LoggingConfig     `yaml:"logging"`

	Observability observability.Config `yaml:"observability"`
}

type LoggingConfig struct {
	MinSeverity string   `yaml:"min_severity"`
	Sinks       []string `yaml:"sinks"`
	JSONPath    string   `yaml:"json_path"`
	BufferSize  int      `yaml:"buffer_size"`
	Color       bool     `yaml:"color"`
	ZapDev      bool     `yaml:"zap_development"`
}

func Default() Config {
	worldCfg := world.DefaultConfig()
	worldCfg.Seed = ""
	return Config{
		Seed:              world.DefaultSeed,
		TickRate:          DefaultTickRate,
		ListenAddr:        DefaultListenAddr,
		FeedIntervalTicks: DefaultFeedIntervalTicks,
		Walkers:           DefaultWalkers,
		Spatial:           spatial.DefaultConfig(),
		Visibility:        visibility.DefaultConfig(),
		World:             worldCfg,
		Logging: LoggingConfig{
			MinSeverity: "info",
			Sinks:       []string{"console"},
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg.Normalized(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	cfg = cfg.Normalized()
	if _, err := logging.ParseSeverity(cfg.Logging.MinSeverity); err != nil {
		return cfg, fmt.Errorf("config %s: logging: %w", path, err)
	}
	return cfg, nil
}

// Normalized fills gaps with defaults. The top-level seed also seeds the
// world generator unless the world section sets its own.
func (c Config) Normalized() Config {
	def := Default()
	c.Seed = strings.TrimSpace(c.Seed)
	if c.Seed == "" {
		c.Seed = def.Seed
	}
	if c.TickRate <= 0 {
		c.TickRate = def.TickRate
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.FeedIntervalTicks <= 0 {
		c.FeedIntervalTicks = def.FeedIntervalTicks
	}
	if c.Walkers < 0 {
		c.Walkers = 0
	}
	if strings.TrimSpace(c.World.Seed) == "" {
		c.World.Seed = c.Seed
	}
	c.Spatial = c.Spatial.Normalized()
	c.Visibility = c.Visibility.Normalized()
	c.World = c.World.Normalized()
	if len(c.Logging.Sinks) == 0 {
		c.Logging.Sinks = def.Logging.Sinks
	}
	return c
}

// TickInterval is the wall-clock duration of one tick.
func (c Config) TickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// LoggingRouterConfig converts the logging section for logging.NewRouter.
func (c Config) LoggingRouterConfig() logging.Config {
	out := logging.DefaultConfig()
	if severity, err := logging.ParseSeverity(c.Logging.MinSeverity); err == nil {
		out.MinimumSeverity = severity
	}
	if len(c.Logging.Sinks) > 0 {
		out.EnabledSinks = append([]string(nil), c.Logging.Sinks...)
	}
	if c.Logging.BufferSize > 0 {
		out.BufferSize = c.Logging.BufferSize
	}
	out.JSON.FilePath = c.Logging.JSONPath
	out.Console.UseColor = c.Logging.Color
	out.Zap.Development = c.Logging.ZapDev
	out.Fields = map[string]any{"seed": c.Seed}
	return out
}
