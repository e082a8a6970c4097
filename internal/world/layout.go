package world

import (
	"sort"

	"github.com/google/uuid"

	"mech-arena/server/internal/collision"
	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/interior"
	"mech-arena/server/internal/visibility"
)

// Layout is the static arena: sparse exterior walls and windows plus the
// structure registry. Structure ground tiles are cached so per-ray lookups
// stay constant time.
type Layout struct {
	tiles      map[coords.TilePos]TileKind
	structures *interior.Registry
	occupied   map[coords.TilePos]visibility.Occlusion
}

func NewLayout(footprint interior.Footprint) *Layout {
	return &Layout{
		tiles:      make(map[coords.TilePos]TileKind),
		structures: interior.NewRegistry(footprint),
		occupied:   make(map[coords.TilePos]visibility.Occlusion),
	}
}

func (l *Layout) Footprint() interior.Footprint {
	return l.structures.Footprint()
}

// Structures exposes the registry for read access.
func (l *Layout) Structures() *interior.Registry {
	return l.structures
}

// SetTile places terrain. Tiles outside the arena are ignored.
func (l *Layout) SetTile(pos coords.TilePos, kind TileKind) {
	if !pos.InWorldBounds() {
		return
	}
	if kind == TileFloor {
		delete(l.tiles, pos)
		return
	}
	l.tiles[pos] = kind
}

// TileAt is the exterior terrain at pos. Unset tiles are floor.
func (l *Layout) TileAt(pos coords.TilePos) TileKind {
	return l.tiles[pos]
}

// Tiles lists every wall and window in row order.
func (l *Layout) Tiles() []Tile {
	out := make([]Tile, 0, len(l.tiles))
	for pos, kind := range l.tiles {
		out = append(out, Tile{Pos: pos, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.Y != out[j].Pos.Y {
			return out[i].Pos.Y < out[j].Pos.Y
		}
		return out[i].Pos.X < out[j].Pos.X
	})
	return out
}

// PutStructure registers or moves a structure.
func (l *Layout) PutStructure(s interior.Structure) {
	l.structures.Put(s)
	l.reindex()
}

func (l *Layout) RemoveStructure(id uuid.UUID) bool {
	if !l.structures.Remove(id) {
		return false
	}
	l.reindex()
	return true
}

// SyncStructures makes the registry match live exactly. It reports whether
// anything changed.
func (l *Layout) SyncStructures(live []interior.Structure) bool {
	changed := false
	seen := make(map[uuid.UUID]struct{}, len(live))
	for _, s := range live {
		if s.ID == uuid.Nil {
			continue
		}
		seen[s.ID] = struct{}{}
		if current, err := l.structures.Get(s.ID); err == nil && current == s {
			continue
		}
		l.structures.Put(s)
		changed = true
	}
	for _, s := range l.structures.All() {
		if _, ok := seen[s.ID]; !ok {
			l.structures.Remove(s.ID)
			changed = true
		}
	}
	if changed {
		l.reindex()
	}
	return changed
}

func (l *Layout) reindex() {
	clear(l.occupied)
	footprint := l.structures.Footprint()
	for _, s := range l.structures.All() {
		footprint.GroundRegion(s.Base).Each(func(t coords.TilePos) bool {
			if _, taken := l.occupied[t]; !taken {
				l.occupied[t] = visibility.OcclusionStructureWall
			}
			return true
		})
		for _, door := range footprint.Doors(s.Base).Tiles() {
			l.occupied[door] = visibility.OcclusionDoor
		}
	}
}

// OcclusionAt classifies a tile for raycasting. Exterior terrain wins over
// structure footprints.
func (l *Layout) OcclusionAt(pos coords.TilePos) visibility.Occlusion {
	switch l.TileAt(pos) {
	case TileWall:
		return visibility.OcclusionWall
	case TileWindow:
		return visibility.OcclusionWindow
	}
	if occ, ok := l.occupied[pos]; ok {
		return occ
	}
	return visibility.OcclusionClear
}

// WallShapes returns a collision box for each solid tile in region.
func (l *Layout) WallShapes(region coords.TileRegion) []collision.Shape {
	var out []collision.Shape
	if region.Area() > len(l.tiles) {
		for _, t := range l.Tiles() {
			if region.Contains(t.Pos) && t.Kind.Solid() {
				out = append(out, collision.WallShape(coords.NewTileRegion(t.Pos, t.Pos)))
			}
		}
		return out
	}
	region.Each(func(pos coords.TilePos) bool {
		if l.TileAt(pos).Solid() {
			out = append(out, collision.WallShape(coords.NewTileRegion(pos, pos)))
		}
		return true
	})
	return out
}

// StructureShapes returns the ground boxes of structures within radius of p.
func (l *Layout) StructureShapes(p coords.WorldPos, radius float64) []collision.Shape {
	footprint := l.structures.Footprint()
	var out []collision.Shape
	for _, s := range l.structures.All() {
		shape := collision.StructureShape(s.Base.ToWorld(), footprint.SizeTiles)
		if collision.CircleBoxOverlap(p, radius, shape.Box) {
			out = append(out, shape)
		}
	}
	return out
}
