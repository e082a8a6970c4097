package interior

import (
	"math"

	"mech-arena/server/internal/coords"
)

// Side is the face of a structure a viewer is looking from.
type Side int

const (
	SideUp Side = iota
	SideDown
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideUp:
		return "up"
	case SideDown:
		return "down"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// CrossesWindow picks the structure face nearest to the viewer's bearing
// from the ground footprint centre. It does not test actual window tiles;
// per-ray occlusion is decided by the visibility engine. ok is false for a
// viewer standing on the ground footprint, where no face lies between it and
// the interior.
func (f Footprint) CrossesWindow(viewer coords.WorldPos, base coords.TilePos) (side Side, ok bool) {
	if f.GroundRegion(base).Contains(viewer.ToTile()) {
		return SideUp, false
	}
	d := viewer.Sub(f.Center(base))
	if math.Abs(d.X) > math.Abs(d.Y) {
		if d.X > 0 {
			return SideRight, true
		}
		return SideLeft, true
	}
	if d.Y > 0 {
		return SideDown, true
	}
	return SideUp, true
}

// SightConfig tunes the interior proximity heuristic.
type SightConfig struct {
	// MaxDistance is the world distance beyond which no interior tile is seen.
	MaxDistance float64 `json:"maxDistance" yaml:"max_distance"`
	// DoorRadiusTiles is how close the viewer tile must be to a door for the
	// door path to apply on floor 0.
	DoorRadiusTiles float64 `json:"doorRadiusTiles" yaml:"door_radius_tiles"`
	DoorFalloff     float64 `json:"doorFalloff" yaml:"door_falloff"`
	DoorFalloffCap  float64 `json:"doorFalloffCap" yaml:"door_falloff_cap"`
	WindowFalloff   float64 `json:"windowFalloff" yaml:"window_falloff"`
	WindowFactor    float64 `json:"windowFactor" yaml:"window_factor"`
	// MinVisible is the threshold a window sighting must exceed.
	MinVisible float64 `json:"minVisible" yaml:"min_visible"`
}

func DefaultSightConfig() SightConfig {
	return SightConfig{
		MaxDistance:     200,
		DoorRadiusTiles: 2,
		DoorFalloff:     100,
		DoorFalloffCap:  0.8,
		WindowFalloff:   150,
		WindowFactor:    0.7,
		MinVisible:      0.1,
	}
}

// Normalized replaces non-positive values with defaults.
func (c SightConfig) Normalized() SightConfig {
	def := DefaultSightConfig()
	if c.MaxDistance <= 0 {
		c.MaxDistance = def.MaxDistance
	}
	if c.DoorRadiusTiles <= 0 {
		c.DoorRadiusTiles = def.DoorRadiusTiles
	}
	if c.DoorFalloff <= 0 {
		c.DoorFalloff = def.DoorFalloff
	}
	if c.DoorFalloffCap <= 0 || c.DoorFalloffCap > 1 {
		c.DoorFalloffCap = def.DoorFalloffCap
	}
	if c.WindowFalloff <= 0 {
		c.WindowFalloff = def.WindowFalloff
	}
	if c.WindowFactor <= 0 || c.WindowFactor > 1 {
		c.WindowFactor = def.WindowFactor
	}
	if c.MinVisible <= 0 {
		c.MinVisible = def.MinVisible
	}
	return c
}

// Sighting is an interior tile seen from outside.
type Sighting struct {
	Location
	Visibility float64 `json:"visibility" msgpack:"visibility"`
}

// CanSeeInto estimates how well viewer sees interior tile loc of the
// structure based at base. Floor 0 is seen well from next to a door;
// otherwise the interior is seen through the face window the viewer looks
// at, with linear falloff.
func (c SightConfig) CanSeeInto(f Footprint, viewer coords.WorldPos, base coords.TilePos, loc Location) (bool, float64) {
	distance := f.DistanceToInterior(viewer, base, loc)
	if distance > c.MaxDistance {
		return false, 0
	}

	if loc.Floor == 0 {
		viewerTile := viewer.ToTile()
		for _, door := range f.Doors(base).Tiles() {
			if viewerTile.DistanceTo(door) <= c.DoorRadiusTiles {
				return true, 1 - math.Min(distance/c.DoorFalloff, c.DoorFalloffCap)
			}
		}
	}

	if _, ok := f.CrossesWindow(viewer, base); !ok {
		return false, 0
	}
	visibility := math.Max(0, 1-distance/c.WindowFalloff) * c.WindowFactor
	return visibility > c.MinVisible, visibility
}

// PotentiallyVisible lists every interior tile of the structure that is
// visible above the threshold and within maxDistance of the viewer.
func (c SightConfig) PotentiallyVisible(f Footprint, viewer coords.WorldPos, base coords.TilePos, maxDistance float64) []Sighting {
	if f.distanceToBounds(viewer, base) > math.Min(maxDistance, c.MaxDistance) {
		return nil
	}
	var out []Sighting
	for _, m := range f.Mappings(base) {
		ok, visibility := c.CanSeeInto(f, viewer, base, m.Location)
		if !ok || visibility <= c.MinVisible {
			continue
		}
		if f.DistanceToInterior(viewer, base, m.Location) > maxDistance {
			continue
		}
		out = append(out, Sighting{Location: m.Location, Visibility: visibility})
	}
	return out
}
