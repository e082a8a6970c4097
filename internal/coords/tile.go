package coords

import "math"

// TilePos is a discrete tile coordinate.
type TilePos struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Tile builds a TilePos.
func Tile(x, y int) TilePos {
	return TilePos{X: x, Y: y}
}

func (t TilePos) Add(o TilePos) TilePos {
	return TilePos{X: t.X + o.X, Y: t.Y + o.Y}
}

func (t TilePos) Sub(o TilePos) TilePos {
	return TilePos{X: t.X - o.X, Y: t.Y - o.Y}
}

func (t TilePos) Offset(dx, dy int) TilePos {
	return TilePos{X: t.X + dx, Y: t.Y + dy}
}

// Neighbors4 lists the orthogonal neighbours in N, E, S, W order.
func (t TilePos) Neighbors4() [4]TilePos {
	return [4]TilePos{
		t.Offset(0, -1),
		t.Offset(1, 0),
		t.Offset(0, 1),
		t.Offset(-1, 0),
	}
}

// Neighbors8 lists all eight surrounding tiles, row by row.
func (t TilePos) Neighbors8() [8]TilePos {
	return [8]TilePos{
		t.Offset(-1, -1), t.Offset(0, -1), t.Offset(1, -1),
		t.Offset(-1, 0), t.Offset(1, 0),
		t.Offset(-1, 1), t.Offset(0, 1), t.Offset(1, 1),
	}
}

func (t TilePos) ManhattanDistanceTo(o TilePos) int {
	return absInt(t.X-o.X) + absInt(t.Y-o.Y)
}

func (t TilePos) ChebyshevDistanceTo(o TilePos) int {
	dx := absInt(t.X - o.X)
	dy := absInt(t.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// DistanceTo is the Euclidean distance in tiles.
func (t TilePos) DistanceTo(o TilePos) float64 {
	return math.Hypot(float64(t.X-o.X), float64(t.Y-o.Y))
}

// ToWorld returns the top-left corner of the tile.
func (t TilePos) ToWorld() WorldPos {
	return WorldPos{X: float64(t.X) * TileSize, Y: float64(t.Y) * TileSize}
}

// ToWorldCenter returns the midpoint of the tile.
func (t TilePos) ToWorldCenter() WorldPos {
	return WorldPos{X: (float64(t.X) + 0.5) * TileSize, Y: (float64(t.Y) + 0.5) * TileSize}
}

func (t TilePos) InWorldBounds() bool {
	return t.X >= 0 && t.X < ArenaWidthTiles && t.Y >= 0 && t.Y < ArenaHeightTiles
}

func (t TilePos) InFloorBounds() bool {
	return t.X >= 0 && t.X < FloorWidthTiles && t.Y >= 0 && t.Y < FloorHeightTiles
}

func (t TilePos) ClampToWorld() TilePos {
	return TilePos{X: clampInt(t.X, 0, ArenaWidthTiles-1), Y: clampInt(t.Y, 0, ArenaHeightTiles-1)}
}

func (t TilePos) ClampToFloor() TilePos {
	return TilePos{X: clampInt(t.X, 0, FloorWidthTiles-1), Y: clampInt(t.Y, 0, FloorHeightTiles-1)}
}

// TileToWorld is the free-function form of TilePos.ToWorld.
func TileToWorld(t TilePos) WorldPos {
	return t.ToWorld()
}

// TileToWorldCenter is the free-function form of TilePos.ToWorldCenter.
func TileToWorldCenter(t TilePos) WorldPos {
	return t.ToWorldCenter()
}

// GridCell addresses a spatial-partition cell. Its size is chosen per index.
type GridCell struct {
	X int
	Y int
}

// ToWorld returns the centre of the cell.
func (c GridCell) ToWorld(cellSize float64) WorldPos {
	return WorldPos{X: float64(c.X)*cellSize + cellSize/2, Y: float64(c.Y)*cellSize + cellSize/2}
}

// ScreenPos is a camera relative position.
type ScreenPos struct {
	X float64
	Y float64
}

func (s ScreenPos) ToWorld(camera WorldPos) WorldPos {
	return WorldPos{X: s.X + camera.X, Y: s.Y + camera.Y}
}

// NDC is a normalised device coordinate in [-1, 1].
type NDC struct {
	X float64
	Y float64
}

func (n NDC) ToWorld(width, height float64) WorldPos {
	return WorldPos{X: (n.X + 1) / 2 * width, Y: (n.Y + 1) / 2 * height}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
