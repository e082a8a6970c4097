package coords

import "math"

// WorldPos is a continuous point in world units.
type WorldPos struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// World builds a WorldPos.
func World(x, y float64) WorldPos {
	return WorldPos{X: x, Y: y}
}

func (p WorldPos) Add(o WorldPos) WorldPos {
	return WorldPos{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p WorldPos) Sub(o WorldPos) WorldPos {
	return WorldPos{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p WorldPos) Scale(f float64) WorldPos {
	return WorldPos{X: p.X * f, Y: p.Y * f}
}

// Div divides both components by f. A zero divisor yields the zero vector.
func (p WorldPos) Div(f float64) WorldPos {
	if f == 0 {
		return WorldPos{}
	}
	return WorldPos{X: p.X / f, Y: p.Y / f}
}

func (p WorldPos) Dot(o WorldPos) float64 {
	return p.X*o.X + p.Y*o.Y
}

// Lerp interpolates from p toward o; t is not clamped.
func (p WorldPos) Lerp(o WorldPos, t float64) WorldPos {
	return WorldPos{X: p.X + (o.X-p.X)*t, Y: p.Y + (o.Y-p.Y)*t}
}

func (p WorldPos) Magnitude() float64 {
	return math.Hypot(p.X, p.Y)
}

func (p WorldPos) MagnitudeSquared() float64 {
	return p.X*p.X + p.Y*p.Y
}

func (p WorldPos) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Normalize returns the unit vector in p's direction, or the zero vector
// when p has no length.
func (p WorldPos) Normalize() WorldPos {
	m := p.Magnitude()
	if m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return WorldPos{}
	}
	return WorldPos{X: p.X / m, Y: p.Y / m}
}

// DirectionTo returns the unit vector from p toward o, zero when p == o.
func (p WorldPos) DirectionTo(o WorldPos) WorldPos {
	return o.Sub(p).Normalize()
}

func (p WorldPos) DistanceTo(o WorldPos) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p WorldPos) DistanceSquaredTo(o WorldPos) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

// ToTile returns the tile containing p. Negative coordinates floor toward
// negative infinity.
func (p WorldPos) ToTile() TilePos {
	return TilePos{X: floorDiv(p.X, TileSize), Y: floorDiv(p.Y, TileSize)}
}

// ToGrid returns the partition cell containing p for the given cell size.
func (p WorldPos) ToGrid(cellSize float64) GridCell {
	if cellSize <= 0 {
		cellSize = TileSize
	}
	return GridCell{X: floorDiv(p.X, cellSize), Y: floorDiv(p.Y, cellSize)}
}

// ToScreen offsets p by the camera position.
func (p WorldPos) ToScreen(camera WorldPos) ScreenPos {
	return ScreenPos{X: p.X - camera.X, Y: p.Y - camera.Y}
}

// ToNDC maps p into [-1, 1] on both axes relative to a width x height extent.
func (p WorldPos) ToNDC(width, height float64) NDC {
	if width == 0 || height == 0 {
		return NDC{}
	}
	return NDC{X: p.X/width*2 - 1, Y: p.Y/height*2 - 1}
}

func (p WorldPos) InWorldBounds() bool {
	return p.X >= 0 && p.X < ArenaWidth && p.Y >= 0 && p.Y < ArenaHeight
}

func (p WorldPos) InFloorBounds() bool {
	return p.X >= 0 && p.X < FloorWidth && p.Y >= 0 && p.Y < FloorHeight
}

// ClampToWorld clamps p into [0, ArenaWidth) x [0, ArenaHeight).
func (p WorldPos) ClampToWorld() WorldPos {
	return WorldPos{X: clampHalfOpen(p.X, ArenaWidth), Y: clampHalfOpen(p.Y, ArenaHeight)}
}

// ClampToFloor clamps p into the extent of one structure floor.
func (p WorldPos) ClampToFloor() WorldPos {
	return WorldPos{X: clampHalfOpen(p.X, FloorWidth), Y: clampHalfOpen(p.Y, FloorHeight)}
}

// WorldToTile is the free-function form of WorldPos.ToTile.
func WorldToTile(p WorldPos) TilePos {
	return p.ToTile()
}
