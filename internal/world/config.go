package world

import (
	"strings"

	"mech-arena/server/internal/interior"
)

const (
	DefaultSeed = "arena"

	DefaultStructureCount = 4
	DefaultWallRunCount   = 24
	DefaultWallRunMin     = 3
	DefaultWallRunMax     = 8
	DefaultWindowChance   = 0.2
)

// Config drives layout generation.
type Config struct {
	Seed       string `json:"seed" yaml:"seed"`
	Structures int    `json:"structures" yaml:"structures"`
	WallRuns   int    `json:"wallRuns" yaml:"wall_runs"`
	WallRunMin int    `json:"wallRunMin" yaml:"wall_run_min"`
	WallRunMax int    `json:"wallRunMax" yaml:"wall_run_max"`
	// WindowChance is the probability that any one wall tile is glazed.
	WindowChance float64            `json:"windowChance" yaml:"window_chance"`
	Footprint    interior.Footprint `json:"footprint" yaml:"footprint"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Structures < 0 {
		normalized.Structures = 0
	}
	if normalized.WallRuns < 0 {
		normalized.WallRuns = 0
	}
	if normalized.WallRunMin <= 0 {
		normalized.WallRunMin = DefaultWallRunMin
	}
	if normalized.WallRunMax < normalized.WallRunMin {
		normalized.WallRunMax = normalized.WallRunMin
	}
	if normalized.WindowChance < 0 || normalized.WindowChance > 1 {
		normalized.WindowChance = DefaultWindowChance
	}
	if normalized.Footprint.Validate() != nil {
		normalized.Footprint = interior.DefaultFootprint()
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Seed:         DefaultSeed,
		Structures:   DefaultStructureCount,
		WallRuns:     DefaultWallRunCount,
		WallRunMin:   DefaultWallRunMin,
		WallRunMax:   DefaultWallRunMax,
		WindowChance: DefaultWindowChance,
		Footprint:    interior.DefaultFootprint(),
	}
}
