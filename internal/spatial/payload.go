package spatial

import (
	"github.com/google/uuid"

	"mech-arena/server/internal/coords"
)

// Category identifies which index grid an entity lives in.
type Category int

const (
	CategoryPlayer Category = iota
	CategoryStructure
	CategoryPickup
	CategoryProjectile
)

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryStructure:
		return "structure"
	case CategoryPickup:
		return "pickup"
	case CategoryProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// Payload is the closed set of per-category entity data. Only the four
// types in this file implement it.
type Payload interface {
	Category() Category
	payload()
}

// PlayerData is attached to player bodies.
type PlayerData struct {
	Team string
	// Structure is set while the player is inside a structure; the entity
	// position is then the folded position of Floor.
	Structure uuid.UUID
	Floor     int
}

func (d PlayerData) Indoors() bool {
	return d.Structure != uuid.Nil
}

// StructureData is attached to structure bodies.
type StructureData struct {
	Base coords.TilePos
	Team string
}

// PickupData is attached to collectible items lying in the arena.
type PickupData struct {
	Kind   string
	Amount int
}

// ProjectileData is attached to projectiles in flight.
type ProjectileData struct {
	Owner    uuid.UUID
	Velocity coords.WorldPos
	Damage   float64
}

func (PlayerData) Category() Category     { return CategoryPlayer }
func (StructureData) Category() Category  { return CategoryStructure }
func (PickupData) Category() Category     { return CategoryPickup }
func (ProjectileData) Category() Category { return CategoryProjectile }

func (PlayerData) payload()     {}
func (StructureData) payload()  {}
func (PickupData) payload()     {}
func (ProjectileData) payload() {}

// widen converts a typed result into its Payload form.
func widen[T Payload](r QueryResult[T]) QueryResult[Payload] {
	e := r.Entity
	return QueryResult[Payload]{
		Entity: Entity[Payload]{
			ID:       e.ID,
			Position: e.Position,
			Radius:   e.Radius,
			Data:     e.Data,
		},
		Distance: r.Distance,
	}
}
