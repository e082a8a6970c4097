package coords

import "math"

// TileRegion is an inclusive rectangle of tiles.
type TileRegion struct {
	Min TilePos `json:"min"`
	Max TilePos `json:"max"`
}

// NewTileRegion orders the corners so Min <= Max on both axes.
func NewTileRegion(a, b TilePos) TileRegion {
	r := TileRegion{Min: a, Max: b}
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// RegionAround covers every tile within radius tiles of center on both axes.
func RegionAround(center TilePos, radius int) TileRegion {
	if radius < 0 {
		radius = -radius
	}
	return TileRegion{
		Min: center.Offset(-radius, -radius),
		Max: center.Offset(radius, radius),
	}
}

// WorldRegion covers the whole arena.
func WorldRegion() TileRegion {
	return TileRegion{Max: Tile(ArenaWidthTiles-1, ArenaHeightTiles-1)}
}

// FloorRegion covers one structure floor in local interior tiles.
func FloorRegion() TileRegion {
	return TileRegion{Max: Tile(FloorWidthTiles-1, FloorHeightTiles-1)}
}

func (r TileRegion) Contains(t TilePos) bool {
	return t.X >= r.Min.X && t.X <= r.Max.X && t.Y >= r.Min.Y && t.Y <= r.Max.Y
}

func (r TileRegion) Clamp(t TilePos) TilePos {
	return TilePos{X: clampInt(t.X, r.Min.X, r.Max.X), Y: clampInt(t.Y, r.Min.Y, r.Max.Y)}
}

// Intersect returns the overlap of r and o. ok is false when they are disjoint.
func (r TileRegion) Intersect(o TileRegion) (TileRegion, bool) {
	out := TileRegion{
		Min: Tile(max(r.Min.X, o.Min.X), max(r.Min.Y, o.Min.Y)),
		Max: Tile(min(r.Max.X, o.Max.X), min(r.Max.Y, o.Max.Y)),
	}
	if out.Min.X > out.Max.X || out.Min.Y > out.Max.Y {
		return TileRegion{}, false
	}
	return out, true
}

func (r TileRegion) Width() int {
	return r.Max.X - r.Min.X + 1
}

func (r TileRegion) Height() int {
	return r.Max.Y - r.Min.Y + 1
}

func (r TileRegion) Area() int {
	return r.Width() * r.Height()
}

// Each visits tiles row by row and stops early when fn returns false.
func (r TileRegion) Each(fn func(TilePos) bool) {
	if fn == nil {
		return
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			if !fn(Tile(x, y)) {
				return
			}
		}
	}
}

// Tiles lists every tile of the region in row-major order.
func (r TileRegion) Tiles() []TilePos {
	if r.Width() <= 0 || r.Height() <= 0 {
		return nil
	}
	out := make([]TilePos, 0, r.Area())
	r.Each(func(t TilePos) bool {
		out = append(out, t)
		return true
	})
	return out
}

// TileRange is a distance expressed in tiles.
type TileRange float64

func (r TileRange) WorldDistance() float64 {
	return float64(r) * TileSize
}

// RangeFromWorld converts a world distance into tiles.
func RangeFromWorld(d float64) TileRange {
	return TileRange(d / TileSize)
}

// VisibleTileRange returns the tiles a camera of the given screen size can
// show, grown by padding tiles on every side. The camera position is the
// world point drawn at the screen origin.
func VisibleTileRange(camera WorldPos, screenW, screenH, tileSize float64, padding int) TileRegion {
	if tileSize <= 0 {
		tileSize = TileSize
	}
	return TileRegion{
		Min: Tile(
			int(math.Floor(camera.X/tileSize))-padding,
			int(math.Floor(camera.Y/tileSize))-padding,
		),
		Max: Tile(
			int(math.Ceil((camera.X+screenW)/tileSize))+padding,
			int(math.Ceil((camera.Y+screenH)/tileSize))+padding,
		),
	}
}

// Anchor names a point inside a tile as fractions of the tile edge.
type Anchor struct {
	FX float64
	FY float64
}

var (
	AnchorTopLeft      = Anchor{0, 0}
	AnchorTopCenter    = Anchor{0.5, 0}
	AnchorTopRight     = Anchor{1, 0}
	AnchorLeftCenter   = Anchor{0, 0.5}
	AnchorCenter       = Anchor{0.5, 0.5}
	AnchorRightCenter  = Anchor{1, 0.5}
	AnchorBottomLeft   = Anchor{0, 1}
	AnchorBottomCenter = Anchor{0.5, 1}
	AnchorBottomRight  = Anchor{1, 1}
)

// CustomAnchor builds an anchor from fractional offsets.
func CustomAnchor(fx, fy float64) Anchor {
	return Anchor{FX: fx, FY: fy}
}

// In returns the world position of the anchor inside tile t.
func (a Anchor) In(t TilePos) WorldPos {
	origin := t.ToWorld()
	return WorldPos{X: origin.X + a.FX*TileSize, Y: origin.Y + a.FY*TileSize}
}
