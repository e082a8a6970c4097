package visibility

import (
	"sort"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"mech-arena/server/internal/coords"
)

// Snapshot is an immutable copy of one viewer's visibility after a pass.
type Snapshot struct {
	Viewer    uuid.UUID
	Position  coords.WorldPos
	Tick      uint64
	Threshold float64
	Exterior  map[coords.TilePos]float64
	Interior  map[InteriorKey]float64

	visible mapset.Set[coords.TilePos]
}

// TileVisibility is one exterior mask entry.
type TileVisibility struct {
	Tile       coords.TilePos `json:"tile" msgpack:"tile"`
	Visibility float64        `json:"visibility" msgpack:"visibility"`
}

// InteriorSighting is one interior map entry.
type InteriorSighting struct {
	InteriorKey
	Visibility float64 `json:"visibility" msgpack:"visibility"`
}

func (s Snapshot) Visibility(tile coords.TilePos) float64 {
	return s.Exterior[tile]
}

func (s Snapshot) IsVisible(tile coords.TilePos) bool {
	if s.visible.Size() == 0 {
		return s.Exterior[tile] > 0
	}
	return s.visible.Has(tile)
}

func (s Snapshot) InteriorVisibility(key InteriorKey) float64 {
	return s.Interior[key]
}

func (s Snapshot) IsInteriorVisible(key InteriorKey) bool {
	return s.Interior[key] > s.Threshold
}

// Tiles lists the exterior mask in row order.
func (s Snapshot) Tiles() []TileVisibility {
	out := make([]TileVisibility, 0, len(s.Exterior))
	for tile, v := range s.Exterior {
		out = append(out, TileVisibility{Tile: tile, Visibility: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return tileLess(out[i].Tile, out[j].Tile)
	})
	return out
}

// Interiors lists the interior map ordered by structure, floor and tile.
func (s Snapshot) Interiors() []InteriorSighting {
	out := make([]InteriorSighting, 0, len(s.Interior))
	for key, v := range s.Interior {
		out = append(out, InteriorSighting{InteriorKey: key, Visibility: v})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].InteriorKey, out[j].InteriorKey
		if a.Structure != b.Structure {
			return a.Structure.String() < b.Structure.String()
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		return tileLess(a.Tile, b.Tile)
	})
	return out
}

// EdgeFade softens the fog boundary: 1 on a visible tile, falling off
// linearly with Chebyshev distance to the nearest visible tile and 0 at
// fadeDistance or beyond.
func (s Snapshot) EdgeFade(tile coords.TilePos, fadeDistance int) float64 {
	if s.IsVisible(tile) {
		return 1
	}
	if fadeDistance <= 0 {
		return 0
	}
	nearest := fadeDistance + 1
	coords.RegionAround(tile, fadeDistance).Each(func(t coords.TilePos) bool {
		if s.IsVisible(t) {
			if d := tile.ChebyshevDistanceTo(t); d < nearest {
				nearest = d
			}
		}
		return true
	})
	if nearest > fadeDistance {
		return 0
	}
	return 1 - float64(nearest)/float64(fadeDistance)
}

func tileLess(a, b coords.TilePos) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func sortTiles(tiles []coords.TilePos) {
	sort.Slice(tiles, func(i, j int) bool {
		return tileLess(tiles[i], tiles[j])
	})
}
