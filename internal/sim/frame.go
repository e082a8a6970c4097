package sim

import (
	"time"

	"github.com/google/uuid"

	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/interior"
	"mech-arena/server/internal/spatial"
	"mech-arena/server/internal/visibility"
)

// Player is a body the host wants to move this tick.
type Player struct {
	ID       uuid.UUID       `json:"id" msgpack:"id"`
	Team     string          `json:"team,omitempty" msgpack:"team,omitempty"`
	Position coords.WorldPos `json:"position" msgpack:"position"`
	// Desired is where the player wants to be at the end of the tick.
	Desired coords.WorldPos `json:"desired" msgpack:"desired"`
	// Structure is set while the player walks an interior floor. Position
	// and Desired are then local to Floor.
	Structure uuid.UUID `json:"structure,omitempty" msgpack:"structure,omitempty"`
	Floor     int       `json:"floor,omitempty" msgpack:"floor,omitempty"`
	// Viewer players get a visibility engine.
	Viewer bool `json:"viewer,omitempty" msgpack:"viewer,omitempty"`
}

type Pickup struct {
	ID       uuid.UUID       `json:"id" msgpack:"id"`
	Kind     string          `json:"kind" msgpack:"kind"`
	Amount   int             `json:"amount" msgpack:"amount"`
	Position coords.WorldPos `json:"position" msgpack:"position"`
}

type Projectile struct {
	ID       uuid.UUID       `json:"id" msgpack:"id"`
	Owner    uuid.UUID       `json:"owner" msgpack:"owner"`
	Position coords.WorldPos `json:"position" msgpack:"position"`
	Velocity coords.WorldPos `json:"velocity" msgpack:"velocity"`
	Damage   float64         `json:"damage" msgpack:"damage"`
}

// Frame is the authoritative entity set the host hands the driver for one
// tick. A nil Structures slice keeps the current layout structures.
type Frame struct {
	Tick        uint64
	Structures  []interior.Structure
	Players     []Player
	Pickups     []Pickup
	Projectiles []Projectile
}

// PlayerState is a player after movement resolution. Position is floor
// local for indoor players; World is always the folded world position.
type PlayerState struct {
	ID        uuid.UUID       `json:"id" msgpack:"id"`
	Position  coords.WorldPos `json:"position" msgpack:"position"`
	World     coords.WorldPos `json:"world" msgpack:"world"`
	Structure uuid.UUID       `json:"structure,omitempty" msgpack:"structure,omitempty"`
	Floor     int             `json:"floor,omitempty" msgpack:"floor,omitempty"`
	Adjusted  bool            `json:"adjusted,omitempty" msgpack:"adjusted,omitempty"`
	// Entered is set on the tick a player walks through a door.
	Entered bool `json:"entered,omitempty" msgpack:"entered,omitempty"`
}

// Collection credits a player with a pickup.
type Collection struct {
	Player   uuid.UUID `json:"player" msgpack:"player"`
	Pickup   uuid.UUID `json:"pickup" msgpack:"pickup"`
	Kind     string    `json:"kind" msgpack:"kind"`
	Amount   int       `json:"amount" msgpack:"amount"`
	Distance float64   `json:"distance" msgpack:"distance"`
}

// Result is everything one Step produced.
type Result struct {
	Tick       uint64
	Players    []PlayerState
	Hits       []spatial.Hit
	Collected  []Collection
	Recomputed []uuid.UUID
	// Visibility holds the latest snapshot of every tracked viewer.
	Visibility map[uuid.UUID]visibility.Snapshot
	Index      spatial.IndexDebugInfo
	Duration   time.Duration

	// VisibilityDuration is the share of Duration spent in visibility.
	VisibilityDuration time.Duration
}
