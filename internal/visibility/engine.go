package visibility

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/interior"
	"mech-arena/server/logging"
	loggingspatial "mech-arena/server/logging/spatial"
)

// InteriorKey addresses an interior tile of a specific structure.
type InteriorKey struct {
	Structure uuid.UUID `json:"structure" msgpack:"structure"`
	interior.Location
}

// Deps are the world views an Engine reads during a pass. Nil members are
// treated as an open field with no structures.
type Deps struct {
	Occluder   Occluder
	Structures StructureLocator
	Publisher  logging.Publisher
}

// Engine holds one viewer's visibility state. It is owned by the tick
// driver; other goroutines read it through Snapshot.
type Engine struct {
	viewer uuid.UUID
	cfg    Config

	occluder   Occluder
	structures StructureLocator
	publisher  logging.Publisher

	mask     map[coords.TilePos]float64
	visible  mapset.Set[coords.TilePos]
	interior map[InteriorKey]float64

	frames   uint64
	lastPos  coords.WorldPos
	stale    bool
	lastTick uint64
}

func NewEngine(viewer uuid.UUID, cfg Config, deps Deps) *Engine {
	occluder := deps.Occluder
	if occluder == nil {
		occluder = OccluderFunc(nil)
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Engine{
		viewer:     viewer,
		cfg:        cfg.Normalized(),
		occluder:   occluder,
		structures: deps.Structures,
		publisher:  publisher,
		mask:       make(map[coords.TilePos]float64),
		visible:    mapset.New[coords.TilePos](),
		interior:   make(map[InteriorKey]float64),
		stale:      true,
	}
}

func (e *Engine) Viewer() uuid.UUID {
	return e.viewer
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Update advances the frame counter and recomputes when both throttles
// allow it. It reports whether a pass ran.
func (e *Engine) Update(ctx context.Context, tick uint64, pos coords.WorldPos) bool {
	e.frames++
	if e.frames%uint64(e.cfg.UpdateEveryTicks) != 0 {
		return false
	}
	forced := e.stale
	if !forced && e.lastPos.DistanceTo(pos) < e.cfg.MoveThreshold {
		return false
	}
	e.recompute(ctx, tick, pos, forced)
	return true
}

// ForceUpdate discards the movement throttle and runs Update. The frame
// cadence still applies, so the pass may land on a later call.
func (e *Engine) ForceUpdate(ctx context.Context, tick uint64, pos coords.WorldPos) bool {
	e.stale = true
	return e.Update(ctx, tick, pos)
}

// Recompute rebuilds the masks from pos immediately, bypassing both
// throttles.
func (e *Engine) Recompute(ctx context.Context, tick uint64, pos coords.WorldPos) {
	e.recompute(ctx, tick, pos, true)
}

// LastPosition returns the origin of the most recent pass. The bool is
// false before the first pass or after ForceUpdate.
func (e *Engine) LastPosition() (coords.WorldPos, bool) {
	return e.lastPos, !e.stale
}

func (e *Engine) recompute(ctx context.Context, tick uint64, pos coords.WorldPos, forced bool) {
	clear(e.mask)
	clear(e.interior)
	e.visible = mapset.New[coords.TilePos]()

	e.castRays(pos)
	e.sightInteriors(pos)

	e.lastPos = pos
	e.stale = false
	e.lastTick = tick

	loggingspatial.VisibilityRecomputed(ctx, e.publisher, tick, e.actor(), loggingspatial.VisibilityRecomputedPayload{
		X:             pos.X,
		Y:             pos.Y,
		VisibleTiles:  len(e.mask),
		InteriorTiles: len(e.interior),
		Forced:        forced,
	}, nil)
}

func (e *Engine) castRays(origin coords.WorldPos) {
	reach := e.cfg.Range()
	step := e.cfg.Step()
	for i := 0; i < e.cfg.RayCount; i++ {
		angle := float64(i) * 2 * math.Pi / float64(e.cfg.RayCount)
		dir := coords.World(math.Cos(angle), math.Sin(angle))
		for distance := 0.0; distance < reach; distance += step {
			tile := origin.Add(dir.Scale(distance)).ToTile()
			occlusion := e.occluder.OcclusionAt(tile)
			e.mark(tile, BaseVisibility(distance, reach)*e.cfg.attenuation(occlusion))
			if occlusion.Blocks() {
				break
			}
		}
	}
}

// mark raises the stored value for tile to v. Zero is never stored so
// absence and zero read the same.
func (e *Engine) mark(tile coords.TilePos, v float64) {
	if v <= 0 {
		return
	}
	e.visible.Put(tile)
	if v > e.mask[tile] {
		e.mask[tile] = v
	}
}

func (e *Engine) sightInteriors(origin coords.WorldPos) {
	if e.structures == nil {
		return
	}
	footprint := e.structures.Footprint()
	reach := e.cfg.Range()
	for _, s := range e.structures.Near(origin, reach) {
		for _, sighting := range e.cfg.Interior.PotentiallyVisible(footprint, origin, s.Base, reach) {
			if sighting.Visibility <= 0 {
				continue
			}
			key := InteriorKey{Structure: s.ID, Location: sighting.Location}
			if sighting.Visibility > e.interior[key] {
				e.interior[key] = sighting.Visibility
			}
		}
	}
}

func (e *Engine) actor() logging.EntityRef {
	return logging.EntityRef{ID: e.viewer.String(), Kind: logging.EntityKindViewer}
}

// BaseVisibility is the unobstructed strength at distance along a ray of
// length reach.
func BaseVisibility(distance, reach float64) float64 {
	if reach <= 0 {
		return 0
	}
	return math.Max(0, 1-distance/reach)
}

// Visibility returns the exterior strength of tile, 0 when unseen.
func (e *Engine) Visibility(tile coords.TilePos) float64 {
	return e.mask[tile]
}

// IsVisible reports whether any ray reached tile in the last pass.
func (e *Engine) IsVisible(tile coords.TilePos) bool {
	return e.visible.Has(tile)
}

// VisibleTiles returns the tiles reached in the last pass in row order.
func (e *Engine) VisibleTiles() []coords.TilePos {
	out := make([]coords.TilePos, 0, e.visible.Size())
	e.visible.Each(func(t coords.TilePos) {
		out = append(out, t)
	})
	sortTiles(out)
	return out
}

func (e *Engine) InteriorVisibility(key InteriorKey) float64 {
	return e.interior[key]
}

// IsInteriorVisible reports whether an interior tile is bright enough to
// draw.
func (e *Engine) IsInteriorVisible(key InteriorKey) bool {
	return e.interior[key] > e.cfg.VisibleThreshold
}

// InteriorFor returns a copy of the sightings for one structure.
func (e *Engine) InteriorFor(structure uuid.UUID) map[interior.Location]float64 {
	out := make(map[interior.Location]float64)
	for key, v := range e.interior {
		if key.Structure == structure {
			out[key.Location] = v
		}
	}
	return out
}

// InteriorVisibilityFor looks up an interior tile by structure id. The
// error wraps interior.ErrStructureNotFound when the structure is gone.
func (e *Engine) InteriorVisibilityFor(structure uuid.UUID, floor int, tile coords.TilePos) (float64, error) {
	if e.structures == nil {
		return 0, fmt.Errorf("interior visibility: structure %s: %w", structure, interior.ErrStructureNotFound)
	}
	if _, err := e.structures.Get(structure); err != nil {
		return 0, fmt.Errorf("interior visibility: %w", err)
	}
	key := InteriorKey{Structure: structure, Location: interior.Location{Floor: floor, Tile: tile}}
	return e.interior[key], nil
}

// Snapshot copies the current state for readers outside the tick.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Viewer:    e.viewer,
		Position:  e.lastPos,
		Tick:      e.lastTick,
		Threshold: e.cfg.VisibleThreshold,
		Exterior:  make(map[coords.TilePos]float64, len(e.mask)),
		Interior:  make(map[InteriorKey]float64, len(e.interior)),
		visible:   mapset.New[coords.TilePos](),
	}
	for tile, v := range e.mask {
		snap.Exterior[tile] = v
	}
	for key, v := range e.interior {
		snap.Interior[key] = v
	}
	e.visible.Each(func(t coords.TilePos) {
		snap.visible.Put(t)
	})
	return snap
}
