package interior

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mech-arena/server/internal/coords"
)

func TestInteriorMappingIsInjective(t *testing.T) {
	f := DefaultFootprint()
	base := coords.Tile(10, 10)

	ground := f.InteriorToWorld(base, 0, coords.Tile(2, 3))
	upper := f.InteriorToWorld(base, 1, coords.Tile(2, 3))
	assert.Equal(t, coords.Tile(12, 13), ground)
	assert.Equal(t, coords.Tile(12, 23), upper)
	assert.NotEqual(t, ground, upper)

	loc, ok := f.WorldToInterior(ground, base)
	require.True(t, ok)
	assert.Equal(t, Location{Floor: 0, Tile: coords.Tile(2, 3)}, loc)

	loc, ok = f.WorldToInterior(upper, base)
	require.True(t, ok)
	assert.Equal(t, Location{Floor: 1, Tile: coords.Tile(2, 3)}, loc)
}

func TestEveryInteriorTileMapsToADistinctWorldTile(t *testing.T) {
	f := DefaultFootprint()
	base := coords.Tile(-3, 7)
	seen := make(map[coords.TilePos]Location)
	for _, m := range f.Mappings(base) {
		if prev, dup := seen[m.World]; dup {
			t.Fatalf("%v and %v both map to %v", prev, m.Location, m.World)
		}
		seen[m.World] = m.Location
		back, ok := f.WorldToInterior(m.World, base)
		require.True(t, ok)
		require.Equal(t, m.Location, back)
	}
	assert.Len(t, seen, f.Floors*f.FloorWidth*f.FloorHeight)
	assert.Greater(t, f.Stride(), f.FloorHeight)
}

func TestWorldToInteriorRejectsOutsideTiles(t *testing.T) {
	f := DefaultFootprint()
	base := coords.Tile(10, 10)

	_, ok := f.WorldToInterior(coords.Tile(9, 12), base)
	assert.False(t, ok, "left of footprint")
	_, ok = f.WorldToInterior(coords.Tile(10+f.FloorWidth, 12), base)
	assert.False(t, ok, "right of footprint")
	_, ok = f.WorldToInterior(coords.Tile(12, 10+f.FloorHeight), base)
	assert.False(t, ok, "separator row between floors")
	_, ok = f.WorldToInterior(coords.Tile(12, 10+f.Floors*f.Stride()), base)
	assert.False(t, ok, "below top floor")
	_, ok = f.WorldToInterior(coords.Tile(12, 9), base)
	assert.False(t, ok, "above ground floor")
}

func TestWorldBounds(t *testing.T) {
	f := DefaultFootprint()
	b := f.WorldBounds(coords.Tile(10, 10))
	assert.Equal(t, coords.Tile(10, 10), b.Min)
	assert.Equal(t, coords.Tile(19, 10+2*f.Stride()+f.FloorHeight-1), b.Max)
}

func TestFootprintValidate(t *testing.T) {
	require.NoError(t, DefaultFootprint().Validate())
	err := Footprint{SizeTiles: 10, FloorWidth: 0, FloorHeight: -1, Floors: 1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floor width")
	assert.Contains(t, err.Error(), "floor height")
}

func TestDoorSet(t *testing.T) {
	f := DefaultFootprint()
	doors := f.Doors(coords.Tile(10, 10))
	assert.Equal(t, coords.Tile(14, 19), doors.Left)
	assert.Equal(t, coords.Tile(15, 19), doors.Right)
	assert.True(t, doors.IsDoorTile(coords.Tile(14, 19)))
	assert.False(t, doors.IsDoorTile(coords.Tile(0, 0)))

	centre := float64(f.FloorWidth) / 2 * coords.TileSize
	wantY := float64(f.FloorHeight-2) * coords.TileSize
	left := doors.EntryPosition(doors.Left)
	right := doors.EntryPosition(doors.Right)
	fallback := doors.EntryPosition(coords.Tile(0, 0))
	assert.Less(t, left.X, centre)
	assert.Greater(t, right.X, centre)
	assert.Equal(t, centre, fallback.X)
	for _, p := range []coords.WorldPos{left, right, fallback} {
		assert.Equal(t, wantY, p.Y)
		assert.True(t, p.InFloorBounds())
	}
}

func TestCrossesWindowSides(t *testing.T) {
	f := DefaultFootprint()
	base := coords.Tile(10, 10)
	c := f.Center(base)
	cases := []struct {
		offset coords.WorldPos
		want   Side
	}{
		{coords.World(-200, 10), SideLeft},
		{coords.World(200, 10), SideRight},
		{coords.World(5, -200), SideUp},
		{coords.World(5, 200), SideDown},
	}
	for _, tc := range cases {
		side, ok := f.CrossesWindow(c.Add(tc.offset), base)
		assert.True(t, ok, "offset %v", tc.offset)
		assert.Equal(t, tc.want, side, "offset %v", tc.offset)
	}

	_, ok := f.CrossesWindow(c.Add(coords.World(5, 90)), base)
	assert.False(t, ok, "a viewer on the footprint looks through no face")
}

func TestCanSeeIntoNeedsWindowFace(t *testing.T) {
	f := DefaultFootprint()
	cfg := DefaultSightConfig()
	base := coords.Tile(10, 10)
	onRoof := f.Center(base)

	ok, v := cfg.CanSeeInto(f, onRoof, base, Location{Floor: 0, Tile: coords.Tile(4, 4)})
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)

	// The door path still applies on floor 0.
	door := f.Doors(base).Left.ToWorldCenter()
	ok, _ = cfg.CanSeeInto(f, door, base, Location{Floor: 0, Tile: coords.Tile(4, 8)})
	assert.True(t, ok)
}

func TestCanSeeIntoFromOutside(t *testing.T) {
	f := DefaultFootprint()
	cfg := DefaultSightConfig()
	base := coords.Tile(10, 10)
	viewer := coords.World(8*coords.TileSize, 10*coords.TileSize)

	ok, v := cfg.CanSeeInto(f, viewer, base, Location{Floor: 0, Tile: coords.Tile(1, 1)})
	assert.True(t, ok)
	assert.Greater(t, v, 0.0)

	far := f.InteriorToWorld(base, 2, coords.Tile(8, 8)).ToWorldCenter().Sub(coords.World(500, 0))
	ok, v = cfg.CanSeeInto(f, far, base, Location{Floor: 2, Tile: coords.Tile(8, 8)})
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestCanSeeIntoThroughDoor(t *testing.T) {
	f := DefaultFootprint()
	cfg := DefaultSightConfig()
	base := coords.Tile(10, 10)
	viewer := f.Doors(base).Left.ToWorldCenter()

	ok, v := cfg.CanSeeInto(f, viewer, base, Location{Floor: 0, Tile: coords.Tile(4, 8)})
	require.True(t, ok)
	assert.InDelta(t, 0.68, v, 1e-9)

	// Upper floors never use the door path.
	_, upper := cfg.CanSeeInto(f, viewer, base, Location{Floor: 1, Tile: coords.Tile(4, 0)})
	assert.Less(t, upper, v)
}

func TestPotentiallyVisibleRespectsThresholds(t *testing.T) {
	f := DefaultFootprint()
	cfg := DefaultSightConfig()
	base := coords.Tile(10, 10)
	viewer := coords.World(8*coords.TileSize, 10*coords.TileSize)

	sightings := cfg.PotentiallyVisible(f, viewer, base, 256)
	require.NotEmpty(t, sightings)
	for _, s := range sightings {
		assert.Greater(t, s.Visibility, cfg.MinVisible)
		assert.LessOrEqual(t, f.DistanceToInterior(viewer, base, s.Location), 256.0)
		assert.True(t, f.ValidLocation(s.Location))
	}

	assert.Empty(t, cfg.PotentiallyVisible(f, coords.World(-5000, -5000), base, 256))

	narrow := cfg.PotentiallyVisible(f, viewer, base, 60)
	assert.Less(t, len(narrow), len(sightings))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultFootprint())
	a := Structure{ID: uuid.New(), Base: coords.Tile(10, 10)}
	b := Structure{ID: uuid.New(), Base: coords.Tile(60, 10)}
	r.Put(a)
	r.Put(b)
	r.Put(Structure{})
	assert.Equal(t, 2, r.Len())

	got, err := r.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	s, loc, ok := r.Locate(coords.Tile(62, 23))
	require.True(t, ok)
	assert.Equal(t, b.ID, s.ID)
	assert.Equal(t, Location{Floor: 1, Tile: coords.Tile(2, 3)}, loc)

	_, _, ok = r.Locate(coords.Tile(40, 40))
	assert.False(t, ok)

	door, ok := r.DoorAt(coords.Tile(15, 19))
	require.True(t, ok)
	assert.Equal(t, a.ID, door.ID)

	near := r.Near(coords.World(9*coords.TileSize, 12*coords.TileSize), 64)
	require.Len(t, near, 1)
	assert.Equal(t, a.ID, near[0].ID)

	require.True(t, r.Remove(a.ID))
	assert.False(t, r.Remove(a.ID))
	_, err = r.Get(a.ID)
	assert.True(t, errors.Is(err, ErrStructureNotFound))
	_, _, err = r.LocateIn(a.ID, coords.Tile(12, 13))
	assert.ErrorIs(t, err, ErrStructureNotFound)
}

func TestLocalToWorldFoldsFloors(t *testing.T) {
	f := DefaultFootprint()
	base := coords.Tile(10, 10)
	local := coords.World(3.5*coords.TileSize, 2.25*coords.TileSize)

	for floor := 0; floor < f.Floors; floor++ {
		folded := f.LocalToWorld(base, floor, local)
		assert.Equal(t, f.InteriorToWorld(base, floor, local.ToTile()), folded.ToTile())
		loc, ok := f.WorldToInterior(folded.ToTile(), base)
		require.True(t, ok)
		assert.Equal(t, Location{Floor: floor, Tile: local.ToTile()}, loc)
	}
}

func TestFootprintClampToFloor(t *testing.T) {
	f := DefaultFootprint()
	assert.True(t, f.ClampToFloor(coords.World(2000, -5)).InFloorBounds())
	assert.Equal(t, coords.World(64, 64), f.ClampToFloor(coords.World(64, 64)))

	wide := Footprint{SizeTiles: 14, FloorWidth: 12, FloorHeight: 6, Floors: 2}
	got := wide.ClampToFloor(coords.World(1000, 1000))
	w, h := wide.FloorExtent()
	assert.Less(t, got.X, w)
	assert.Less(t, got.Y, h)
	assert.Greater(t, got.X, w-1)
	assert.Equal(t, 0, wide.ClampFloor(-3))
	assert.Equal(t, 1, wide.ClampFloor(7))
}
