package interior

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"mech-arena/server/internal/coords"
)

// ErrStructureNotFound is returned when a structure id is not registered,
// typically because it was removed since the caller captured the id.
var ErrStructureNotFound = errors.New("structure not found")

// Structure is a placed structure.
type Structure struct {
	ID   uuid.UUID      `json:"id" msgpack:"id"`
	Base coords.TilePos `json:"base" msgpack:"base"`
}

// Registry tracks the live structures sharing one footprint. It is owned
// by the tick driver and is not safe for concurrent mutation.
type Registry struct {
	footprint  Footprint
	structures map[uuid.UUID]Structure
}

func NewRegistry(footprint Footprint) *Registry {
	if footprint.Validate() != nil {
		footprint = DefaultFootprint()
	}
	return &Registry{
		footprint:  footprint,
		structures: make(map[uuid.UUID]Structure),
	}
}

func (r *Registry) Footprint() Footprint {
	return r.footprint
}

// Put inserts or moves a structure. Mappings computed for an earlier base
// of the same structure are stale afterwards.
func (r *Registry) Put(s Structure) {
	if s.ID == uuid.Nil {
		return
	}
	r.structures[s.ID] = s
}

// Remove deletes a structure and reports whether it existed.
func (r *Registry) Remove(id uuid.UUID) bool {
	if _, ok := r.structures[id]; !ok {
		return false
	}
	delete(r.structures, id)
	return true
}

func (r *Registry) Len() int {
	return len(r.structures)
}

// Get returns the structure with id or an error wrapping ErrStructureNotFound.
func (r *Registry) Get(id uuid.UUID) (Structure, error) {
	s, ok := r.structures[id]
	if !ok {
		return Structure{}, fmt.Errorf("structure %s: %w", id, ErrStructureNotFound)
	}
	return s, nil
}

// All returns every structure ordered by id.
func (r *Registry) All() []Structure {
	out := make([]Structure, 0, len(r.structures))
	for _, s := range r.structures {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Locate finds the structure whose interior contains the virtual world
// tile. Structures are checked in id order so overlapping virtual rows
// resolve deterministically.
func (r *Registry) Locate(world coords.TilePos) (Structure, Location, bool) {
	for _, s := range r.All() {
		if loc, ok := r.footprint.WorldToInterior(world, s.Base); ok {
			return s, loc, true
		}
	}
	return Structure{}, Location{}, false
}

// LocateIn maps world into the interior of structure id. The bool is false
// when the structure exists but does not contain the tile.
func (r *Registry) LocateIn(id uuid.UUID, world coords.TilePos) (Location, bool, error) {
	s, err := r.Get(id)
	if err != nil {
		return Location{}, false, err
	}
	loc, ok := r.footprint.WorldToInterior(world, s.Base)
	return loc, ok, nil
}

// DoorAt returns the structure owning a door tile.
func (r *Registry) DoorAt(t coords.TilePos) (Structure, bool) {
	for _, s := range r.All() {
		if r.footprint.Doors(s.Base).IsDoorTile(t) {
			return s, true
		}
	}
	return Structure{}, false
}

// OnGround returns the structure whose ground footprint covers t.
func (r *Registry) OnGround(t coords.TilePos) (Structure, bool) {
	for _, s := range r.All() {
		if r.footprint.GroundRegion(s.Base).Contains(t) {
			return s, true
		}
	}
	return Structure{}, false
}

// Near returns structures with any floor within radius world units of p,
// ordered by id.
func (r *Registry) Near(p coords.WorldPos, radius float64) []Structure {
	var out []Structure
	for _, s := range r.All() {
		if r.footprint.distanceToBounds(p, s.Base) <= radius {
			out = append(out, s)
		}
	}
	return out
}
