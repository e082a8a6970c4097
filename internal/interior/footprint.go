// Package interior folds the stacked floors of every structure into the
// shared world tile space. Floor f of a structure based at tile B occupies
// the rows starting at B.Y + f*(FloorHeight+1), so floors never overlap.
package interior

import (
	"errors"
	"fmt"
	"math"

	"mech-arena/server/internal/coords"
)

const (
	DefaultSizeTiles = 10
	DefaultFloors    = 3
)

// Footprint describes the fixed shape shared by every structure.
type Footprint struct {
	// SizeTiles is the edge of the square ground footprint.
	SizeTiles   int `json:"sizeTiles" yaml:"size_tiles"`
	FloorWidth  int `json:"floorWidth" yaml:"floor_width"`
	FloorHeight int `json:"floorHeight" yaml:"floor_height"`
	Floors      int `json:"floors" yaml:"floors"`
}

// Location addresses one interior tile of a structure.
type Location struct {
	Floor int            `json:"floor" msgpack:"floor"`
	Tile  coords.TilePos `json:"tile" msgpack:"tile"`
}

// Mapping pairs an interior location with its virtual world tile.
type Mapping struct {
	Location
	World coords.TilePos
}

func DefaultFootprint() Footprint {
	return Footprint{
		SizeTiles:   DefaultSizeTiles,
		FloorWidth:  coords.FloorWidthTiles,
		FloorHeight: coords.FloorHeightTiles,
		Floors:      DefaultFloors,
	}
}

// Validate rejects footprints that cannot be mapped.
func (f Footprint) Validate() error {
	var errs []error
	if f.SizeTiles <= 0 {
		errs = append(errs, fmt.Errorf("size tiles must be positive, got %d", f.SizeTiles))
	}
	if f.FloorWidth <= 0 {
		errs = append(errs, fmt.Errorf("floor width must be positive, got %d", f.FloorWidth))
	}
	if f.FloorHeight <= 0 {
		errs = append(errs, fmt.Errorf("floor height must be positive, got %d", f.FloorHeight))
	}
	if f.Floors <= 0 {
		errs = append(errs, fmt.Errorf("floor count must be positive, got %d", f.Floors))
	}
	return errors.Join(errs...)
}

// Stride is the vertical distance in tiles between the first rows of two
// consecutive floors. It always exceeds FloorHeight.
func (f Footprint) Stride() int {
	return f.FloorHeight + 1
}

// InteriorToWorld returns the virtual world tile of an interior tile.
func (f Footprint) InteriorToWorld(base coords.TilePos, floor int, local coords.TilePos) coords.TilePos {
	return coords.Tile(base.X+local.X, base.Y+local.Y+floor*f.Stride())
}

// LocalToWorld folds a floor-local world position into the shared world
// space. Its tile is InteriorToWorld of the local tile.
func (f Footprint) LocalToWorld(base coords.TilePos, floor int, local coords.WorldPos) coords.WorldPos {
	offset := coords.World(0, float64(floor*f.Stride())*coords.TileSize)
	return base.ToWorld().Add(offset).Add(local)
}

// FloorExtent is the world size of one floor.
func (f Footprint) FloorExtent() (width, height float64) {
	return float64(f.FloorWidth) * coords.TileSize, float64(f.FloorHeight) * coords.TileSize
}

// ClampToFloor clamps a floor-local position into [0, width) x [0, height)
// of one floor. For the default footprint it matches WorldPos.ClampToFloor.
func (f Footprint) ClampToFloor(local coords.WorldPos) coords.WorldPos {
	if f.FloorWidth == coords.FloorWidthTiles && f.FloorHeight == coords.FloorHeightTiles {
		return local.ClampToFloor()
	}
	w, h := f.FloorExtent()
	return coords.World(clampBelow(local.X, w), clampBelow(local.Y, h))
}

// ClampFloor limits floor to the footprint's floors.
func (f Footprint) ClampFloor(floor int) int {
	return min(max(floor, 0), f.Floors-1)
}

func clampBelow(v, limit float64) float64 {
	return math.Max(0, math.Min(v, math.Nextafter(limit, 0)))
}

// WorldToInterior recovers the interior location of a virtual world tile.
// ok is false when the tile lies outside every floor of the structure,
// including the separator row between floors.
func (f Footprint) WorldToInterior(world, base coords.TilePos) (Location, bool) {
	relX := world.X - base.X
	if relX < 0 || relX >= f.FloorWidth {
		return Location{}, false
	}
	relY := world.Y - base.Y
	for floor := 0; floor < f.Floors; floor++ {
		localY := relY - floor*f.Stride()
		if localY >= 0 && localY < f.FloorHeight {
			return Location{Floor: floor, Tile: coords.Tile(relX, localY)}, true
		}
	}
	return Location{}, false
}

// Contains reports whether world maps to some floor of the structure.
func (f Footprint) Contains(world, base coords.TilePos) bool {
	_, ok := f.WorldToInterior(world, base)
	return ok
}

// ValidLocation reports whether loc names a real interior tile.
func (f Footprint) ValidLocation(loc Location) bool {
	return loc.Floor >= 0 && loc.Floor < f.Floors &&
		loc.Tile.X >= 0 && loc.Tile.X < f.FloorWidth &&
		loc.Tile.Y >= 0 && loc.Tile.Y < f.FloorHeight
}

// WorldBounds spans the virtual tiles of every floor.
func (f Footprint) WorldBounds(base coords.TilePos) coords.TileRegion {
	return coords.TileRegion{
		Min: f.InteriorToWorld(base, 0, coords.Tile(0, 0)),
		Max: f.InteriorToWorld(base, f.Floors-1, coords.Tile(f.FloorWidth-1, f.FloorHeight-1)),
	}
}

// GroundRegion is the physical square the structure covers in the arena.
func (f Footprint) GroundRegion(base coords.TilePos) coords.TileRegion {
	return coords.TileRegion{Min: base, Max: base.Offset(f.SizeTiles-1, f.SizeTiles-1)}
}

// Center is the world-space midpoint of the ground footprint.
func (f Footprint) Center(base coords.TilePos) coords.WorldPos {
	half := float64(f.SizeTiles) * coords.TileSize / 2
	return base.ToWorld().Add(coords.World(half, half))
}

// Mappings enumerates every interior tile with its virtual world tile,
// floor by floor in row-major order.
func (f Footprint) Mappings(base coords.TilePos) []Mapping {
	if f.Floors <= 0 || f.FloorWidth <= 0 || f.FloorHeight <= 0 {
		return nil
	}
	out := make([]Mapping, 0, f.Floors*f.FloorWidth*f.FloorHeight)
	for floor := 0; floor < f.Floors; floor++ {
		for y := 0; y < f.FloorHeight; y++ {
			for x := 0; x < f.FloorWidth; x++ {
				local := coords.Tile(x, y)
				out = append(out, Mapping{
					Location: Location{Floor: floor, Tile: local},
					World:    f.InteriorToWorld(base, floor, local),
				})
			}
		}
	}
	return out
}

// DistanceToInterior measures from viewer to the centre of the virtual
// world tile of loc.
func (f Footprint) DistanceToInterior(viewer coords.WorldPos, base coords.TilePos, loc Location) float64 {
	return viewer.DistanceTo(f.InteriorToWorld(base, loc.Floor, loc.Tile).ToWorldCenter())
}

// distanceToBounds is the distance from p to the nearest point of the
// virtual bounds of every floor.
func (f Footprint) distanceToBounds(p coords.WorldPos, base coords.TilePos) float64 {
	bounds := f.WorldBounds(base)
	minW := bounds.Min.ToWorld()
	maxW := bounds.Max.Offset(1, 1).ToWorld()
	dx := math.Max(0, math.Max(minW.X-p.X, p.X-maxW.X))
	dy := math.Max(0, math.Max(minW.Y-p.Y, p.Y-maxW.Y))
	return math.Hypot(dx, dy)
}
