package app

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/sim"
	"mech-arena/server/internal/world"
)

const (
	pickupSpawnTicks = 30
	maxPickups       = 8
	shotTicks        = 45
	shotSpeed        = 320.0
	shotLifetime     = 60
	shotDamage       = 10
)

var (
	pickupKinds  = []string{"ammo", "armor", "repair"}
	floorCentre  = coords.World(coords.FloorWidth/2, coords.FloorHeight/2)
	indoorRadius = 2.5 * coords.TileSize
)

type walker struct {
	id     uuid.UUID
	center coords.WorldPos
	radius float64
	speed  float64
	angle  float64
	viewer bool
	pos    coords.WorldPos

	// structure and floor are set once the walker has wandered through a
	// door; pos is then floor local.
	structure uuid.UUID
	floor     int
}

func (w *walker) target() coords.WorldPos {
	heading := coords.World(math.Cos(w.angle), math.Sin(w.angle))
	if w.structure != uuid.Nil {
		return floorCentre.Add(heading.Scale(indoorRadius)).ClampToFloor()
	}
	return w.center.Add(heading.Scale(w.radius)).ClampToWorld()
}

type shot struct {
	sim.Projectile
	ttl int
}

// Demo is a sim.FrameSource of players circling the arena centre, with
// pickups dropping into the spawn area and occasional shots between
// outdoor players. Walkers that stray through a door circle the floor they
// arrive on. Every other walker is a viewer.
type Demo struct {
	rng     *rand.Rand
	walkers []*walker
	pickups map[uuid.UUID]sim.Pickup
	shots   []shot
}

func NewDemo(seed string, count int) *Demo {
	rng := world.NewDeterministicRNG(seed, "app.demo")
	center := world.ArenaCenter().ToWorldCenter()
	d := &Demo{
		rng:     rng,
		pickups: make(map[uuid.UUID]sim.Pickup),
	}
	for i := 0; i < count; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			id = uuid.New()
		}
		offset := world.RandomDistance(rng, 0, 20*coords.TileSize)
		heading := world.RandomAngle(rng)
		w := &walker{
			id:     id,
			center: center.Add(coords.World(math.Cos(heading), math.Sin(heading)).Scale(offset)),
			radius: world.RandomDistance(rng, 3*coords.TileSize, 10*coords.TileSize),
			speed:  world.RandomDistance(rng, 0.3, 1.0),
			angle:  world.RandomAngle(rng),
			viewer: i%2 == 0,
		}
		if rng.Intn(2) == 0 {
			w.speed = -w.speed
		}
		w.pos = w.target()
		d.walkers = append(d.walkers, w)
	}
	return d
}

// Walkers lists walker ids in creation order.
func (d *Demo) Walkers() []uuid.UUID {
	out := make([]uuid.UUID, len(d.walkers))
	for i, w := range d.walkers {
		out[i] = w.id
	}
	return out
}

func (d *Demo) NextFrame(tick uint64, dt float64, last sim.Result) sim.Frame {
	d.absorb(last)

	frame := sim.Frame{Tick: tick}
	for _, w := range d.walkers {
		w.angle += w.speed * dt
		frame.Players = append(frame.Players, sim.Player{
			ID:        w.id,
			Team:      "demo",
			Position:  w.pos,
			Desired:   w.target(),
			Structure: w.structure,
			Floor:     w.floor,
			Viewer:    w.viewer,
		})
	}

	if tick%pickupSpawnTicks == 0 && len(d.pickups) < maxPickups {
		d.spawnPickup()
	}
	if tick%shotTicks == 0 {
		d.fire()
	}
	d.advanceShots(dt)

	ids := make([]uuid.UUID, 0, len(d.pickups))
	for id := range d.pickups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		frame.Pickups = append(frame.Pickups, d.pickups[id])
	}
	for _, s := range d.shots {
		frame.Projectiles = append(frame.Projectiles, s.Projectile)
	}
	return frame
}

// absorb applies the previous tick's resolved positions, collections and
// hits.
func (d *Demo) absorb(last sim.Result) {
	resolved := make(map[uuid.UUID]sim.PlayerState, len(last.Players))
	for _, p := range last.Players {
		resolved[p.ID] = p
	}
	for _, w := range d.walkers {
		if state, ok := resolved[w.id]; ok {
			w.pos, w.structure, w.floor = state.Position, state.Structure, state.Floor
		}
	}
	for _, c := range last.Collected {
		delete(d.pickups, c.Pickup)
	}
	if len(last.Hits) == 0 {
		return
	}
	spent := make(map[uuid.UUID]struct{}, len(last.Hits))
	for _, h := range last.Hits {
		spent[h.Projectile.ID] = struct{}{}
	}
	kept := d.shots[:0]
	for _, s := range d.shots {
		if _, ok := spent[s.ID]; !ok {
			kept = append(kept, s)
		}
	}
	d.shots = kept
}

func (d *Demo) spawnPickup() {
	region := world.SpawnSafeRegion()
	tile := coords.Tile(
		world.RandomTileIn(d.rng, region.Min.X, region.Max.X),
		world.RandomTileIn(d.rng, region.Min.Y, region.Max.Y),
	)
	id, err := uuid.NewRandomFromReader(d.rng)
	if err != nil {
		id = uuid.New()
	}
	d.pickups[id] = sim.Pickup{
		ID:       id,
		Kind:     pickupKinds[d.rng.Intn(len(pickupKinds))],
		Amount:   1 + d.rng.Intn(5),
		Position: tile.ToWorldCenter(),
	}
}

// fire sends a shot from a random walker toward its nearest neighbour.
func (d *Demo) fire() {
	if len(d.walkers) < 2 {
		return
	}
	shooter := d.walkers[d.rng.Intn(len(d.walkers))]
	if shooter.structure != uuid.Nil {
		return
	}
	var target *walker
	best := math.Inf(1)
	for _, w := range d.walkers {
		if w == shooter || w.structure != uuid.Nil {
			continue
		}
		if dist := shooter.pos.DistanceSquaredTo(w.pos); dist < best {
			best, target = dist, w
		}
	}
	if target == nil {
		return
	}
	dir := shooter.pos.DirectionTo(target.pos)
	if dir.IsZero() {
		return
	}
	id, err := uuid.NewRandomFromReader(d.rng)
	if err != nil {
		id = uuid.New()
	}
	d.shots = append(d.shots, shot{
		Projectile: sim.Projectile{
			ID:       id,
			Owner:    shooter.id,
			Position: shooter.pos,
			Velocity: dir.Scale(shotSpeed),
			Damage:   shotDamage,
		},
		ttl: shotLifetime,
	})
}

func (d *Demo) advanceShots(dt float64) {
	kept := d.shots[:0]
	for _, s := range d.shots {
		s.ttl--
		s.Position = s.Position.Add(s.Velocity.Scale(dt))
		if s.ttl <= 0 || !s.Position.InWorldBounds() {
			continue
		}
		kept = append(kept, s)
	}
	d.shots = kept
}
