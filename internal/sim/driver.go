package sim

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"mech-arena/server/internal/collision"
	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/spatial"
	"mech-arena/server/internal/visibility"
	"mech-arena/server/internal/world"
	"mech-arena/server/logging"
	"mech-arena/server/logging/economy"
	"mech-arena/server/logging/lifecycle"
	loggingspatial "mech-arena/server/logging/spatial"
)

// Config tunes the driver's index and visibility engines.
type Config struct {
	Spatial    spatial.Config
	Visibility visibility.Config
}

func DefaultConfig() Config {
	return Config{
		Spatial:    spatial.DefaultConfig(),
		Visibility: visibility.DefaultConfig(),
	}
}

// Driver owns all per-tick spatial state: the layout, the index and one
// visibility engine per viewer. Only the goroutine calling Step may touch
// it; readers use the snapshots it returns.
type Driver struct {
	cfg     Config
	deps    Deps
	layout  *world.Layout
	index   *spatial.Index
	viewers map[uuid.UUID]*viewerState
}

type viewerState struct {
	engine   *visibility.Engine
	since    uint64
	snapshot visibility.Snapshot
}

func NewDriver(layout *world.Layout, cfg Config, deps Deps) *Driver {
	if layout == nil {
		layout = world.Generate(world.Config{})
	}
	cfg.Spatial = cfg.Spatial.Normalized()
	cfg.Visibility = cfg.Visibility.Normalized()
	return &Driver{
		cfg:     cfg,
		deps:    deps.normalized(),
		layout:  layout,
		index:   spatial.NewIndex(cfg.Spatial),
		viewers: make(map[uuid.UUID]*viewerState),
	}
}

// Deps returns the normalised dependencies.
func (d *Driver) Deps() Deps {
	return d.deps
}

func (d *Driver) Layout() *world.Layout {
	return d.layout
}

func (d *Driver) Index() *spatial.Index {
	return d.index
}

// Viewer returns the engine tracking id.
func (d *Driver) Viewer(id uuid.UUID) (*visibility.Engine, bool) {
	state, ok := d.viewers[id]
	if !ok {
		return nil, false
	}
	return state.engine, true
}

// Step runs one tick: structures are synced, the index is rebuilt from the
// frame, movement is resolved, projectile hits and pickups are evaluated
// and finally every viewer's visibility is updated from its resolved
// position.
func (d *Driver) Step(ctx context.Context, frame Frame) Result {
	start := d.deps.Clock.Now()
	tick := frame.Tick

	players := d.syncStructures(ctx, frame)
	d.rebuildIndex(ctx, tick, players, frame)
	states := d.resolveMovement(ctx, tick, players)
	hits := d.projectileHits(ctx, tick)
	collected := d.collectPickups(ctx, tick)
	visStart := d.deps.Clock.Now()
	recomputed := d.updateVisibility(ctx, tick, players, states)
	visDuration := d.deps.Clock.Now().Sub(visStart)

	result := Result{
		Tick:       tick,
		Players:    states,
		Hits:       hits,
		Collected:  collected,
		Recomputed: recomputed,
		Visibility: make(map[uuid.UUID]visibility.Snapshot, len(d.viewers)),
		Index:      d.index.DebugInfo(),

		VisibilityDuration: visDuration,
	}
	for id, state := range d.viewers {
		result.Visibility[id] = state.snapshot
	}
	result.Duration = d.deps.Clock.Now().Sub(start)

	d.deps.Metrics.Add("sim.steps", 1)
	d.deps.Metrics.Add("sim.visibility_recomputed", uint64(len(recomputed)))
	d.deps.Metrics.Store("sim.viewers", uint64(len(d.viewers)))
	return result
}

func (d *Driver) syncStructures(ctx context.Context, frame Frame) []Player {
	if frame.Structures != nil && d.layout.SyncStructures(frame.Structures) {
		d.deps.Metrics.Add("sim.structure_syncs", 1)
	}

	players := append([]Player(nil), frame.Players...)
	sort.Slice(players, func(i, j int) bool {
		return players[i].ID.String() < players[j].ID.String()
	})

	registry := d.layout.Structures()
	footprint := d.layout.Footprint()
	for i := range players {
		if players[i].Structure == uuid.Nil {
			players[i].Floor = 0
			continue
		}
		if _, err := registry.Get(players[i].Structure); err != nil {
			loggingspatial.StructureMissing(ctx, d.deps.Publisher, frame.Tick, playerRef(players[i].ID), loggingspatial.StructureMissingPayload{
				StructureID: players[i].Structure.String(),
				Operation:   "player_location",
			}, map[string]any{"error": err.Error()})
			players[i].Structure = uuid.Nil
			players[i].Floor = 0
			continue
		}
		players[i].Floor = footprint.ClampFloor(players[i].Floor)
	}
	return players
}

// worldPosition folds a floor-local position into world space. Outdoor
// positions are returned unchanged.
func (d *Driver) worldPosition(structure uuid.UUID, floor int, local coords.WorldPos) coords.WorldPos {
	if structure == uuid.Nil {
		return local
	}
	s, err := d.layout.Structures().Get(structure)
	if err != nil {
		return local
	}
	return d.layout.Footprint().LocalToWorld(s.Base, floor, local)
}

func (d *Driver) rebuildIndex(ctx context.Context, tick uint64, players []Player, frame Frame) {
	footprint := d.layout.Footprint()
	structures := d.layout.Structures().All()

	pop := spatial.Population{
		Players:     make([]spatial.Entity[spatial.PlayerData], 0, len(players)),
		Structures:  make([]spatial.Entity[spatial.StructureData], 0, len(structures)),
		Pickups:     make([]spatial.Entity[spatial.PickupData], 0, len(frame.Pickups)),
		Projectiles: make([]spatial.Entity[spatial.ProjectileData], 0, len(frame.Projectiles)),
	}
	for _, p := range players {
		pop.Players = append(pop.Players, spatial.Entity[spatial.PlayerData]{
			ID:       p.ID,
			Position: d.worldPosition(p.Structure, p.Floor, p.Position),
			Data:     spatial.PlayerData{Team: p.Team, Structure: p.Structure, Floor: p.Floor},
		})
	}
	for _, s := range structures {
		pop.Structures = append(pop.Structures, spatial.Entity[spatial.StructureData]{
			ID:       s.ID,
			Position: footprint.Center(s.Base),
			Data:     spatial.StructureData{Base: s.Base},
		})
	}
	for _, p := range frame.Pickups {
		pop.Pickups = append(pop.Pickups, spatial.Entity[spatial.PickupData]{
			ID:       p.ID,
			Position: p.Position,
			Data:     spatial.PickupData{Kind: p.Kind, Amount: p.Amount},
		})
	}
	for _, p := range frame.Projectiles {
		pop.Projectiles = append(pop.Projectiles, spatial.Entity[spatial.ProjectileData]{
			ID:       p.ID,
			Position: p.Position,
			Data:     spatial.ProjectileData{Owner: p.Owner, Velocity: p.Velocity, Damage: p.Damage},
		})
	}
	d.index.Rebuild(pop)

	loggingspatial.IndexRebuilt(ctx, d.deps.Publisher, tick, loggingspatial.IndexRebuiltPayload{
		Players:     len(pop.Players),
		Structures:  len(pop.Structures),
		Pickups:     len(pop.Pickups),
		Projectiles: len(pop.Projectiles),
	}, nil)
}

func (d *Driver) playerRadius() float64 {
	return d.cfg.Spatial.PlayerRadiusTiles * coords.TileSize
}

// obstaclesFor gathers the walls and structure boxes an outdoor player
// could touch between its position and desired.
func (d *Driver) obstaclesFor(p Player) []collision.Shape {
	radius := d.playerRadius()
	pad := int(math.Ceil(radius/coords.TileSize)) + 1
	a, b := p.Position.ToTile(), p.Desired.ToTile()
	region := coords.NewTileRegion(
		coords.Tile(min(a.X, b.X)-pad, min(a.Y, b.Y)-pad),
		coords.Tile(max(a.X, b.X)+pad, max(a.Y, b.Y)+pad),
	)
	obstacles := d.layout.WallShapes(region)
	reach := p.Position.DistanceTo(p.Desired)/2 + radius + coords.TileSize
	return append(obstacles, d.layout.StructureShapes(p.Position.Lerp(p.Desired, 0.5), reach)...)
}

// enterDoor moves an outdoor player stepping from an adjacent tile onto a
// door tile to floor 0 of that structure, at the door's entry position.
func (d *Driver) enterDoor(ctx context.Context, tick uint64, p *Player) bool {
	door := p.Desired.ToTile()
	if p.Position.ToTile().ChebyshevDistanceTo(door) > 1 {
		return false
	}
	s, ok := d.layout.Structures().DoorAt(door)
	if !ok {
		return false
	}

	entry := d.layout.Footprint().Doors(s.Base).EntryPosition(door)
	p.Structure, p.Floor = s.ID, 0
	p.Position, p.Desired = entry, entry
	lifecycle.StructureEntered(ctx, d.deps.Publisher, tick, playerRef(p.ID),
		logging.EntityRef{ID: s.ID.String(), Kind: logging.EntityKindStructure},
		lifecycle.StructureEnteredPayload{DoorX: door.X, DoorY: door.Y, EntryX: entry.X, EntryY: entry.Y}, nil)
	d.deps.Metrics.Add("sim.structure_entries", 1)
	return true
}

// floorKey groups indoor bodies sharing one floor of one structure.
type floorKey struct {
	structure uuid.UUID
	floor     int
}

// resolveMovement moves outdoor players against walls and structures and
// indoor players within their floor, then separates overlapping bodies
// within each space. Outdoor and indoor bodies never interact.
func (d *Driver) resolveMovement(ctx context.Context, tick uint64, players []Player) []PlayerState {
	radius := d.playerRadius()
	footprint := d.layout.Footprint()
	floorW, floorH := footprint.FloorExtent()

	states := make([]PlayerState, len(players))
	outdoor := make([]*collision.Body, 0, len(players))
	indoor := make(map[floorKey][]*collision.Body)
	bodies := make([]*collision.Body, len(players))
	contacts := make([]int, len(players))
	entered := make([]bool, len(players))

	for i := range players {
		p := &players[i]
		if p.Structure == uuid.Nil {
			entered[i] = d.enterDoor(ctx, tick, p)
		}
		if p.Structure != uuid.Nil {
			bodies[i] = &collision.Body{Position: footprint.ClampToFloor(p.Desired), Radius: radius}
			key := floorKey{structure: p.Structure, floor: p.Floor}
			indoor[key] = append(indoor[key], bodies[i])
			continue
		}

		shape := collision.PlayerShape(p.Position, radius)
		near := d.obstaclesFor(*p)
		delta := collision.SafeMovement(p.Position, p.Desired.Sub(p.Position), shape, near)
		contacts[i] = len(collision.Contacts(shape.MovedTo(p.Desired), near))
		bodies[i] = &collision.Body{Position: p.Position.Add(delta), Radius: radius}
		outdoor = append(outdoor, bodies[i])
	}

	if len(outdoor) > 0 {
		collision.ResolveOverlaps(outdoor, d.outdoorObstacles(outdoor), collision.ArenaBounds())
	}
	for _, group := range indoor {
		collision.ResolveOverlaps(group, nil, collision.Bounds{Width: floorW, Height: floorH})
	}

	for i, p := range players {
		final := bodies[i].Position.ClampToWorld()
		if p.Structure != uuid.Nil {
			final = footprint.ClampToFloor(bodies[i].Position)
		}
		world := d.worldPosition(p.Structure, p.Floor, final)
		adjusted := final.Sub(p.Desired).MagnitudeSquared() > 1e-12
		states[i] = PlayerState{
			ID:        p.ID,
			Position:  final,
			World:     world,
			Structure: p.Structure,
			Floor:     p.Floor,
			Adjusted:  adjusted,
			Entered:   entered[i],
		}
		d.index.Players().Update(spatial.Entity[spatial.PlayerData]{
			ID:       p.ID,
			Position: world,
			Radius:   radius,
			Data:     spatial.PlayerData{Team: p.Team, Structure: p.Structure, Floor: p.Floor},
		})
		if adjusted {
			loggingspatial.MovementAdjusted(ctx, d.deps.Publisher, tick, playerRef(p.ID), loggingspatial.MovementAdjustedPayload{
				DesiredX:  p.Desired.X,
				DesiredY:  p.Desired.Y,
				ResolvedX: final.X,
				ResolvedY: final.Y,
				Contacts:  contacts[i],
			}, nil)
		}
	}
	return states
}

func (d *Driver) outdoorObstacles(bodies []*collision.Body) []collision.Shape {
	lo, hi := bodies[0].Position.ToTile(), bodies[0].Position.ToTile()
	for _, b := range bodies[1:] {
		t := b.Position.ToTile()
		lo = coords.Tile(min(lo.X, t.X), min(lo.Y, t.Y))
		hi = coords.Tile(max(hi.X, t.X), max(hi.Y, t.Y))
	}
	pad := int(math.Ceil(d.playerRadius()/coords.TileSize)) + 1
	region := coords.NewTileRegion(lo.Offset(-pad, -pad), hi.Offset(pad, pad))
	obstacles := d.layout.WallShapes(region)
	footprint := d.layout.Footprint()
	for _, s := range d.layout.Structures().All() {
		obstacles = append(obstacles, collision.StructureShape(s.Base.ToWorld(), footprint.SizeTiles))
	}
	return obstacles
}

func (d *Driver) projectileHits(ctx context.Context, tick uint64) []spatial.Hit {
	hits := d.index.ProjectileHits()
	for _, hit := range hits {
		targetKind := logging.EntityKindPlayer
		if hit.Category == spatial.CategoryStructure {
			targetKind = logging.EntityKindStructure
		}
		loggingspatial.ProjectileHit(ctx, d.deps.Publisher, tick,
			logging.EntityRef{ID: hit.Projectile.ID.String(), Kind: logging.EntityKindProjectile},
			logging.EntityRef{ID: hit.Target.String(), Kind: targetKind},
			loggingspatial.ProjectileHitPayload{
				TargetCategory: hit.Category.String(),
				Distance:       hit.Distance,
				Damage:         hit.Projectile.Data.Damage,
			}, nil)
	}
	d.deps.Metrics.Add("sim.projectile_hits", uint64(len(hits)))
	return hits
}

// collectPickups awards each pickup to the nearest outdoor player within
// collection distance. Ties resolve by player id.
func (d *Driver) collectPickups(ctx context.Context, tick uint64) []Collection {
	reach := d.cfg.Spatial.PickupDistanceTiles * coords.TileSize
	var out []Collection
	for _, pickup := range d.index.Pickups().All() {
		claimants := d.index.OutdoorPlayersNear(pickup.Position, reach)
		if len(claimants) == 0 {
			continue
		}
		winner := claimants[0]
		pickupRef := logging.EntityRef{ID: pickup.ID.String(), Kind: logging.EntityKindPickup}
		if len(claimants) > 1 {
			economy.PickupContested(ctx, d.deps.Publisher, tick, pickupRef, economy.ContestedPayload{
				Kind:     pickup.Data.Kind,
				Claimant: len(claimants),
			}, nil)
		}
		out = append(out, Collection{
			Player:   winner.Entity.ID,
			Pickup:   pickup.ID,
			Kind:     pickup.Data.Kind,
			Amount:   pickup.Data.Amount,
			Distance: winner.Distance,
		})
		d.index.Pickups().Remove(pickup.ID)
		economy.PickupCollected(ctx, d.deps.Publisher, tick, playerRef(winner.Entity.ID), pickupRef, economy.PickupPayload{
			Kind:     pickup.Data.Kind,
			Amount:   pickup.Data.Amount,
			Distance: winner.Distance,
		}, nil)
	}
	return out
}

func (d *Driver) updateVisibility(ctx context.Context, tick uint64, players []Player, states []PlayerState) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(players))
	var recomputed []uuid.UUID

	for i, p := range players {
		if !p.Viewer {
			continue
		}
		present[p.ID] = struct{}{}
		pos := states[i].World

		state, ok := d.viewers[p.ID]
		if !ok {
			engine := visibility.NewEngine(p.ID, d.cfg.Visibility, visibility.Deps{
				Occluder:   d.layout,
				Structures: d.layout.Structures(),
				Publisher:  d.deps.Publisher,
			})
			engine.Recompute(ctx, tick, pos)
			state = &viewerState{engine: engine, since: tick, snapshot: engine.Snapshot()}
			d.viewers[p.ID] = state
			recomputed = append(recomputed, p.ID)
			lifecycle.ViewerAttached(ctx, d.deps.Publisher, tick, playerRef(p.ID), lifecycle.ViewerAttachedPayload{X: pos.X, Y: pos.Y}, nil)
			continue
		}
		if state.engine.Update(ctx, tick, pos) {
			state.snapshot = state.engine.Snapshot()
			recomputed = append(recomputed, p.ID)
		}
	}

	for id, state := range d.viewers {
		if _, ok := present[id]; ok {
			continue
		}
		delete(d.viewers, id)
		lifecycle.ViewerDetached(ctx, d.deps.Publisher, tick, playerRef(id), lifecycle.ViewerDetachedPayload{
			TrackedTicks: tick - state.since,
		}, nil)
	}
	return recomputed
}

func playerRef(id uuid.UUID) logging.EntityRef {
	return logging.EntityRef{ID: id.String(), Kind: logging.EntityKindPlayer}
}
