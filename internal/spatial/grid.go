// Package spatial implements uniform-grid partition indexes used for the
// broad phase of proximity, pickup, targeting and hit queries.
package spatial

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"mech-arena/server/internal/coords"
)

// Entity is one indexed body. Data carries the category specific payload.
type Entity[T any] struct {
	ID       uuid.UUID
	Position coords.WorldPos
	Radius   float64
	Data     T
}

// CollidesWith reports whether the two circles touch or overlap.
func (e Entity[T]) CollidesWith(o Entity[T]) bool {
	return CirclesOverlap(e.Position, e.Radius, o.Position, o.Radius)
}

// ContainsPoint reports whether p lies within the entity's circle.
func (e Entity[T]) ContainsPoint(p coords.WorldPos) bool {
	return e.Position.DistanceTo(p) <= e.Radius
}

// QueryResult pairs an entity with its centre distance from the query point.
type QueryResult[T any] struct {
	Entity   Entity[T]
	Distance float64
}

// DebugInfo summarises grid occupancy.
type DebugInfo struct {
	TotalEntities int     `json:"totalEntities"`
	OccupiedCells int     `json:"occupiedCells"`
	TotalCells    int     `json:"totalCells"`
	CellSize      float64 `json:"cellSize"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
}

type gridEntry[T any] struct {
	entity Entity[T]
	cells  []coords.GridCell
}

// Grid is a uniform grid over a fixed world extent. Entities are listed in
// every cell their bounding circle may touch. Positions outside the extent
// are clamped to the border cells.
type Grid[T any] struct {
	cellSize    float64
	invCellSize float64
	width       int
	height      int
	cells       map[coords.GridCell][]uuid.UUID
	entries     map[uuid.UUID]*gridEntry[T]
}

// NewGrid builds a grid covering worldWidth x worldHeight world units.
func NewGrid[T any](cellSize, worldWidth, worldHeight float64) *Grid[T] {
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = coords.TileSize
	}
	if worldWidth <= 0 {
		worldWidth = coords.ArenaWidth
	}
	if worldHeight <= 0 {
		worldHeight = coords.ArenaHeight
	}
	return &Grid[T]{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		width:       int(math.Ceil(worldWidth / cellSize)),
		height:      int(math.Ceil(worldHeight / cellSize)),
		cells:       make(map[coords.GridCell][]uuid.UUID),
		entries:     make(map[uuid.UUID]*gridEntry[T]),
	}
}

// NewArenaGrid builds a grid covering the whole arena.
func NewArenaGrid[T any](cellSize float64) *Grid[T] {
	return NewGrid[T](cellSize, coords.ArenaWidth, coords.ArenaHeight)
}

func (g *Grid[T]) CellSize() float64 {
	return g.cellSize
}

func (g *Grid[T]) Len() int {
	return len(g.entries)
}

// Clear drops every entity.
func (g *Grid[T]) Clear() {
	clear(g.cells)
	clear(g.entries)
}

// Insert registers e. Inserting an id that is already present moves it.
func (g *Grid[T]) Insert(e Entity[T]) {
	if e.Radius < 0 || math.IsNaN(e.Radius) {
		e.Radius = 0
	}
	if existing, ok := g.entries[e.ID]; ok {
		g.removeFromCells(e.ID, existing.cells)
	}
	cells := g.cellsForCircle(e.Position, e.Radius)
	g.entries[e.ID] = &gridEntry[T]{entity: e, cells: cells}
	for _, cell := range cells {
		g.cells[cell] = append(g.cells[cell], e.ID)
	}
}

// Remove deletes id from every cell it occupied and reports whether it was
// present.
func (g *Grid[T]) Remove(id uuid.UUID) bool {
	entry, ok := g.entries[id]
	if !ok {
		return false
	}
	g.removeFromCells(id, entry.cells)
	delete(g.entries, id)
	return true
}

// Update re-registers e under its new position and radius.
func (g *Grid[T]) Update(e Entity[T]) {
	g.Remove(e.ID)
	g.Insert(e)
}

// Get returns the entity stored under id.
func (g *Grid[T]) Get(id uuid.UUID) (Entity[T], bool) {
	entry, ok := g.entries[id]
	if !ok {
		return Entity[T]{}, false
	}
	return entry.entity, true
}

// QueryRadius returns entities whose circle reaches within radius of
// center, nearest first. Ties break on id.
func (g *Grid[T]) QueryRadius(center coords.WorldPos, radius float64) []QueryResult[T] {
	if radius < 0 {
		return nil
	}
	seen := mapset.New[uuid.UUID]()
	var out []QueryResult[T]
	for _, cell := range g.cellsForCircle(center, radius) {
		for _, id := range g.cells[cell] {
			if seen.Has(id) {
				continue
			}
			seen.Put(id)
			e := g.entries[id].entity
			d := center.DistanceTo(e.Position)
			if d <= radius+e.Radius {
				out = append(out, QueryResult[T]{Entity: e, Distance: d})
			}
		}
	}
	sortResults(out)
	return out
}

// QueryRect returns entities whose position lies inside the inclusive
// rectangle spanned by a and b, ordered by id.
func (g *Grid[T]) QueryRect(a, b coords.WorldPos) []Entity[T] {
	minP := coords.World(math.Min(a.X, b.X), math.Min(a.Y, b.Y))
	maxP := coords.World(math.Max(a.X, b.X), math.Max(a.Y, b.Y))
	lo := g.clampCell(g.worldToCell(minP))
	hi := g.clampCell(g.worldToCell(maxP))

	seen := mapset.New[uuid.UUID]()
	var out []Entity[T]
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			for _, id := range g.cells[coords.GridCell{X: x, Y: y}] {
				if seen.Has(id) {
					continue
				}
				seen.Put(id)
				e := g.entries[id].entity
				if PointInRect(e.Position, minP, maxP) {
					out = append(out, e)
				}
			}
		}
	}
	sortEntities(out)
	return out
}

// Nearest returns the closest entity within maxDistance.
func (g *Grid[T]) Nearest(p coords.WorldPos, maxDistance float64) (QueryResult[T], bool) {
	return g.NearestWhere(p, maxDistance, nil)
}

// NearestWhere returns the closest entity within maxDistance accepted by keep.
func (g *Grid[T]) NearestWhere(p coords.WorldPos, maxDistance float64, keep func(Entity[T]) bool) (QueryResult[T], bool) {
	for _, r := range g.QueryRadius(p, maxDistance) {
		if keep == nil || keep(r.Entity) {
			return r, true
		}
	}
	return QueryResult[T]{}, false
}

// All returns every entity ordered by id.
func (g *Grid[T]) All() []Entity[T] {
	out := make([]Entity[T], 0, len(g.entries))
	for _, entry := range g.entries {
		out = append(out, entry.entity)
	}
	sortEntities(out)
	return out
}

func (g *Grid[T]) DebugInfo() DebugInfo {
	return DebugInfo{
		TotalEntities: len(g.entries),
		OccupiedCells: len(g.cells),
		TotalCells:    g.width * g.height,
		CellSize:      g.cellSize,
		Width:         g.width,
		Height:        g.height,
	}
}

func (g *Grid[T]) removeFromCells(id uuid.UUID, cells []coords.GridCell) {
	for _, cell := range cells {
		bucket := g.cells[cell]
		for i := range bucket {
			if bucket[i] != id {
				continue
			}
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
		if len(bucket) == 0 {
			delete(g.cells, cell)
		} else {
			g.cells[cell] = bucket
		}
	}
}

func (g *Grid[T]) cellsForCircle(center coords.WorldPos, radius float64) []coords.GridCell {
	c := g.worldToCell(center)
	span := saturate(math.Ceil(radius * g.invCellSize))
	lo := g.clampCell(coords.GridCell{X: c.X - span, Y: c.Y - span})
	hi := g.clampCell(coords.GridCell{X: c.X + span, Y: c.Y + span})
	cells := make([]coords.GridCell, 0, (hi.X-lo.X+1)*(hi.Y-lo.Y+1))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			cells = append(cells, coords.GridCell{X: x, Y: y})
		}
	}
	return cells
}

func (g *Grid[T]) worldToCell(p coords.WorldPos) coords.GridCell {
	return coords.GridCell{
		X: saturate(math.Floor(p.X * g.invCellSize)),
		Y: saturate(math.Floor(p.Y * g.invCellSize)),
	}
}

func (g *Grid[T]) clampCell(c coords.GridCell) coords.GridCell {
	return coords.GridCell{X: clampIndex(c.X, g.width), Y: clampIndex(c.Y, g.height)}
}

// saturate converts v to int without overflowing on huge inputs.
func saturate(v float64) int {
	const limit = 1 << 30
	switch {
	case math.IsNaN(v):
		return 0
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	default:
		return int(v)
	}
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func sortResults[T any](results []QueryResult[T]) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Entity.ID.String() < results[j].Entity.ID.String()
	})
}

func sortEntities[T any](entities []Entity[T]) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].ID.String() < entities[j].ID.String()
	})
}

// CirclesOverlap reports whether two circles touch or overlap.
func CirclesOverlap(a coords.WorldPos, ra float64, b coords.WorldPos, rb float64) bool {
	return a.DistanceTo(b) <= ra+rb
}

// PointInRect reports whether p lies in the inclusive rectangle [lo, hi].
func PointInRect(p, lo, hi coords.WorldPos) bool {
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}

// ClosestPointOnRect clamps p onto the rectangle [lo, hi].
func ClosestPointOnRect(p, lo, hi coords.WorldPos) coords.WorldPos {
	return coords.World(math.Min(math.Max(p.X, lo.X), hi.X), math.Min(math.Max(p.Y, lo.Y), hi.Y))
}

// CircleRectIntersects reports whether a circle touches the rectangle [lo, hi].
func CircleRectIntersects(center coords.WorldPos, radius float64, lo, hi coords.WorldPos) bool {
	return center.DistanceTo(ClosestPointOnRect(center, lo, hi)) <= radius
}
