package world

import "mech-arena/server/internal/coords"

// TileKind is the static terrain on an exterior tile.
type TileKind uint8

const (
	TileFloor TileKind = iota
	TileWall
	TileWindow
)

func (k TileKind) String() string {
	switch k {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileWindow:
		return "window"
	default:
		return "unknown"
	}
}

// Solid reports whether bodies collide with the tile.
func (k TileKind) Solid() bool {
	return k == TileWall || k == TileWindow
}

// Tile is one non-floor exterior tile.
type Tile struct {
	Pos  coords.TilePos `json:"pos" msgpack:"pos"`
	Kind TileKind       `json:"kind" msgpack:"kind"`
}
