// Package visibility computes per-viewer fog of war by casting rays over
// the shared tile space and estimating interior sightings of nearby
// structures.
package visibility

import (
	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/interior"
)

// Config holds the raycasting and throttle constants.
type Config struct {
	RayCount int `json:"rayCount" yaml:"ray_count"`
	// StepFraction is the ray step as a fraction of a tile.
	StepFraction float64 `json:"stepFraction" yaml:"step_fraction"`
	RangeTiles   float64 `json:"rangeTiles" yaml:"range_tiles"`

	// UpdateEveryTicks and MoveThreshold gate recomputation: an update runs
	// on every Nth call and only once the viewer has moved MoveThreshold
	// world units since the last pass.
	UpdateEveryTicks int     `json:"updateEveryTicks" yaml:"update_every_ticks"`
	MoveThreshold    float64 `json:"moveThreshold" yaml:"move_threshold"`

	WallFactor          float64 `json:"wallFactor" yaml:"wall_factor"`
	StructureWallFactor float64 `json:"structureWallFactor" yaml:"structure_wall_factor"`
	WindowFactor        float64 `json:"windowFactor" yaml:"window_factor"`
	DoorFactor          float64 `json:"doorFactor" yaml:"door_factor"`

	// VisibleThreshold is the strength an interior tile must exceed to be
	// drawn.
	VisibleThreshold float64 `json:"visibleThreshold" yaml:"visible_threshold"`

	Interior interior.SightConfig `json:"interior" yaml:"interior"`
}

func DefaultConfig() Config {
	return Config{
		RayCount:            72,
		StepFraction:        0.5,
		RangeTiles:          8,
		UpdateEveryTicks:    3,
		MoveThreshold:       16,
		WallFactor:          0.1,
		StructureWallFactor: 0.2,
		WindowFactor:        0.8,
		DoorFactor:          0.7,
		VisibleThreshold:    0.1,
		Interior:            interior.DefaultSightConfig(),
	}
}

// Normalized replaces out-of-range values with defaults.
func (c Config) Normalized() Config {
	def := DefaultConfig()
	if c.RayCount <= 0 {
		c.RayCount = def.RayCount
	}
	if c.StepFraction <= 0 || c.StepFraction > 1 {
		c.StepFraction = def.StepFraction
	}
	if c.RangeTiles <= 0 {
		c.RangeTiles = def.RangeTiles
	}
	if c.UpdateEveryTicks <= 0 {
		c.UpdateEveryTicks = def.UpdateEveryTicks
	}
	if c.MoveThreshold < 0 {
		c.MoveThreshold = def.MoveThreshold
	}
	c.WallFactor = normalizeFactor(c.WallFactor, def.WallFactor)
	c.StructureWallFactor = normalizeFactor(c.StructureWallFactor, def.StructureWallFactor)
	c.WindowFactor = normalizeFactor(c.WindowFactor, def.WindowFactor)
	c.DoorFactor = normalizeFactor(c.DoorFactor, def.DoorFactor)
	if c.VisibleThreshold <= 0 || c.VisibleThreshold >= 1 {
		c.VisibleThreshold = def.VisibleThreshold
	}
	c.Interior = c.Interior.Normalized()
	return c
}

func normalizeFactor(v, fallback float64) float64 {
	if v < 0 || v > 1 {
		return fallback
	}
	return v
}

// Range is the vision radius in world units.
func (c Config) Range() float64 {
	return coords.TileRange(c.RangeTiles).WorldDistance()
}

// Step is the ray step in world units.
func (c Config) Step() float64 {
	return c.StepFraction * coords.TileSize
}
