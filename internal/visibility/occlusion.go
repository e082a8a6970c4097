package visibility

import (
	"github.com/google/uuid"

	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/interior"
)

// Occlusion classifies how a tile affects a ray passing over it.
type Occlusion uint8

const (
	OcclusionClear Occlusion = iota
	OcclusionWindow
	OcclusionDoor
	OcclusionWall
	OcclusionStructureWall
)

func (o Occlusion) String() string {
	switch o {
	case OcclusionClear:
		return "clear"
	case OcclusionWindow:
		return "window"
	case OcclusionDoor:
		return "door"
	case OcclusionWall:
		return "wall"
	case OcclusionStructureWall:
		return "structure_wall"
	default:
		return "unknown"
	}
}

// Blocks reports whether a ray stops after this tile.
func (o Occlusion) Blocks() bool {
	return o == OcclusionWall || o == OcclusionStructureWall
}

// Occluder answers what stands on a world tile.
type Occluder interface {
	OcclusionAt(tile coords.TilePos) Occlusion
}

// OccluderFunc adapts a plain function to Occluder.
type OccluderFunc func(tile coords.TilePos) Occlusion

func (f OccluderFunc) OcclusionAt(tile coords.TilePos) Occlusion {
	if f == nil {
		return OcclusionClear
	}
	return f(tile)
}

// StructureLocator is the read side of the structure registry the engine
// needs. *interior.Registry satisfies it.
type StructureLocator interface {
	Footprint() interior.Footprint
	Get(id uuid.UUID) (interior.Structure, error)
	Near(p coords.WorldPos, radius float64) []interior.Structure
}

// attenuation returns the multiplier applied to a ray sample on a tile of
// kind o.
func (c Config) attenuation(o Occlusion) float64 {
	switch o {
	case OcclusionWindow:
		return c.WindowFactor
	case OcclusionDoor:
		return c.DoorFactor
	case OcclusionWall:
		return c.WallFactor
	case OcclusionStructureWall:
		return c.StructureWallFactor
	default:
		return 1
	}
}
