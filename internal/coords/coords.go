// Package coords converts between the coordinate spaces used by the arena:
// continuous world units, discrete tiles, spatial-partition cells, camera
// relative screen positions and normalised device coordinates.
package coords

import "math"

const (
	// TileSize is the edge length of one tile in world units.
	TileSize = 32.0

	ArenaWidthTiles  = 100
	ArenaHeightTiles = 100

	// FloorWidthTiles and FloorHeightTiles bound a single structure floor.
	FloorWidthTiles  = 10
	FloorHeightTiles = 9

	ArenaWidth  = ArenaWidthTiles * TileSize
	ArenaHeight = ArenaHeightTiles * TileSize
	FloorWidth  = FloorWidthTiles * TileSize
	FloorHeight = FloorHeightTiles * TileSize
)

// Space names a coordinate space.
type Space int

const (
	SpaceWorld Space = iota
	SpaceTile
	SpaceScreen
	SpaceGrid
	SpaceFloor
	SpaceNDC
)

func (s Space) String() string {
	switch s {
	case SpaceWorld:
		return "world"
	case SpaceTile:
		return "tile"
	case SpaceScreen:
		return "screen"
	case SpaceGrid:
		return "grid"
	case SpaceFloor:
		return "floor"
	case SpaceNDC:
		return "ndc"
	default:
		return "unknown"
	}
}

// ValidIn reports whether (x, y) lies inside the fixed bounds of space.
// Screen and grid coordinates are unbounded.
func ValidIn(space Space, x, y float64) bool {
	switch space {
	case SpaceWorld:
		return World(x, y).InWorldBounds()
	case SpaceTile:
		return Tile(int(math.Floor(x)), int(math.Floor(y))).InWorldBounds()
	case SpaceFloor:
		return World(x, y).InFloorBounds()
	case SpaceNDC:
		return x >= -1 && x <= 1 && y >= -1 && y <= 1
	default:
		return true
	}
}

// clampHalfOpen limits v to [0, extent).
func clampHalfOpen(v, extent float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v >= extent {
		return math.Nextafter(extent, 0)
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorDiv(v, size float64) int {
	return int(math.Floor(v / size))
}
