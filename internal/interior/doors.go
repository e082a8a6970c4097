package interior

import "mech-arena/server/internal/coords"

// DoorSet holds the two bottom-centre entry tiles of a structure.
type DoorSet struct {
	Left  coords.TilePos `json:"left"`
	Right coords.TilePos `json:"right"`
	Base  coords.TilePos `json:"base"`

	floorWidth  int
	floorHeight int
}

// Doors derives the door tiles for a structure based at base.
func (f Footprint) Doors(base coords.TilePos) DoorSet {
	row := base.Y + f.SizeTiles - 1
	return DoorSet{
		Left:        coords.Tile(base.X+f.SizeTiles/2-1, row),
		Right:       coords.Tile(base.X+f.SizeTiles/2, row),
		Base:        base,
		floorWidth:  f.FloorWidth,
		floorHeight: f.FloorHeight,
	}
}

func (d DoorSet) IsDoorTile(t coords.TilePos) bool {
	return t == d.Left || t == d.Right
}

func (d DoorSet) Tiles() [2]coords.TilePos {
	return [2]coords.TilePos{d.Left, d.Right}
}

// EntryPosition is the floor-0 local world position a body arrives at after
// walking through entered. Unknown tiles fall back to the floor centre.
func (d DoorSet) EntryPosition(entered coords.TilePos) coords.WorldPos {
	centre := float64(d.floorWidth) / 2
	x := centre
	switch entered {
	case d.Left:
		x = centre - 0.5
	case d.Right:
		x = centre + 0.5
	}
	return coords.World(x*coords.TileSize, float64(d.floorHeight-2)*coords.TileSize)
}
