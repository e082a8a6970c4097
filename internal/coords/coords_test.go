package coords

import (
	"math"
	"testing"
)

func TestWorldToTileFloorsNegativeCoordinates(t *testing.T) {
	cases := []struct {
		pos  WorldPos
		want TilePos
	}{
		{World(0, 0), Tile(0, 0)},
		{World(31.9, 32), Tile(0, 1)},
		{World(-0.5, -0.5), Tile(-1, -1)},
		{World(-32, -33), Tile(-1, -2)},
		{World(100, -64), Tile(3, -2)},
	}
	for _, tc := range cases {
		if got := tc.pos.ToTile(); got != tc.want {
			t.Fatalf("ToTile(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
}

func TestTileRoundTripYieldsTileFloor(t *testing.T) {
	points := []WorldPos{
		World(0, 0),
		World(17.25, 99.5),
		World(-5, 70),
		World(3199.9, 1),
		World(-64.1, -0.01),
	}
	for _, p := range points {
		got := TileToWorld(WorldToTile(p))
		want := World(math.Floor(p.X/TileSize)*TileSize, math.Floor(p.Y/TileSize)*TileSize)
		if got != want {
			t.Fatalf("round trip of %v = %v, want %v", p, got, want)
		}
	}
}

func TestTileCenter(t *testing.T) {
	if got := Tile(2, 3).ToWorldCenter(); got != World(80, 112) {
		t.Fatalf("unexpected tile centre %v", got)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]WorldPos{
		{World(0, 0), World(3, 4)},
		{World(-10, 5), World(22.5, -7)},
		{World(1e6, 1e6), World(-1e6, 3)},
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if a.DistanceTo(b) != b.DistanceTo(a) {
			t.Fatalf("distance not symmetric for %v %v", a, b)
		}
		if a.DistanceSquaredTo(b) != b.DistanceSquaredTo(a) {
			t.Fatalf("squared distance not symmetric for %v %v", a, b)
		}
	}
	if d := World(0, 0).DistanceTo(World(3, 4)); d != 5 {
		t.Fatalf("expected 5, got %f", d)
	}
	ta, tb := Tile(1, 2), Tile(-3, 7)
	if ta.ManhattanDistanceTo(tb) != tb.ManhattanDistanceTo(ta) || ta.ManhattanDistanceTo(tb) != 9 {
		t.Fatalf("unexpected manhattan distance %d", ta.ManhattanDistanceTo(tb))
	}
}

func TestZeroVectorEdgeCases(t *testing.T) {
	if got := (WorldPos{}).Normalize(); got != (WorldPos{}) {
		t.Fatalf("normalize zero = %v", got)
	}
	p := World(12, -4)
	dir := p.DirectionTo(p)
	if dir != (WorldPos{}) || math.IsNaN(dir.X) || math.IsNaN(dir.Y) {
		t.Fatalf("direction to self = %v", dir)
	}
	if got := p.Div(0); got != (WorldPos{}) {
		t.Fatalf("divide by zero = %v", got)
	}
}

func TestNormalizeAndLerp(t *testing.T) {
	n := World(3, 4).Normalize()
	if math.Abs(n.X-0.6) > 1e-9 || math.Abs(n.Y-0.8) > 1e-9 {
		t.Fatalf("unexpected normalised vector %v", n)
	}
	if got := World(0, 0).Lerp(World(10, -10), 0.25); got != World(2.5, -2.5) {
		t.Fatalf("unexpected lerp %v", got)
	}
	if got := World(1, 2).Add(World(3, 4)).Sub(World(1, 1)).Scale(2); got != World(6, 10) {
		t.Fatalf("unexpected arithmetic result %v", got)
	}
}

func TestClampIsHalfOpen(t *testing.T) {
	c := World(-5, 1e9).ClampToWorld()
	if c.X != 0 {
		t.Fatalf("expected x clamped to 0, got %f", c.X)
	}
	if c.Y >= ArenaHeight || !c.InWorldBounds() {
		t.Fatalf("expected y inside [0, %f), got %f", ArenaHeight, c.Y)
	}
	if tile := c.ToTile(); tile.Y != ArenaHeightTiles-1 {
		t.Fatalf("clamped point maps outside arena tile %v", tile)
	}
	f := World(FloorWidth, -1).ClampToFloor()
	if !f.InFloorBounds() {
		t.Fatalf("floor clamp escaped bounds: %v", f)
	}
	if got := Tile(-4, 500).ClampToWorld(); got != Tile(0, ArenaHeightTiles-1) {
		t.Fatalf("unexpected tile clamp %v", got)
	}
	if got := Tile(12, -1).ClampToFloor(); got != Tile(FloorWidthTiles-1, 0) {
		t.Fatalf("unexpected floor tile clamp %v", got)
	}
}

func TestNeighbors(t *testing.T) {
	origin := Tile(5, 5)
	seen := map[TilePos]bool{}
	for _, n := range origin.Neighbors8() {
		if n == origin {
			t.Fatalf("neighbour set contains origin")
		}
		if origin.ChebyshevDistanceTo(n) != 1 {
			t.Fatalf("neighbour %v not adjacent", n)
		}
		seen[n] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 unique neighbours, got %d", len(seen))
	}
	for _, n := range origin.Neighbors4() {
		if origin.ManhattanDistanceTo(n) != 1 {
			t.Fatalf("orthogonal neighbour %v not adjacent", n)
		}
	}
}

func TestGridScreenAndNDC(t *testing.T) {
	p := World(100, 70)
	if cell := p.ToGrid(64); cell != (GridCell{X: 1, Y: 1}) {
		t.Fatalf("unexpected grid cell %v", cell)
	}
	if centre := (GridCell{X: 1, Y: 1}).ToWorld(64); centre != World(96, 96) {
		t.Fatalf("unexpected cell centre %v", centre)
	}
	camera := World(40, 10)
	if back := p.ToScreen(camera).ToWorld(camera); back != p {
		t.Fatalf("screen round trip = %v", back)
	}
	ndc := World(50, 150).ToNDC(100, 200)
	if ndc.X != 0 || ndc.Y != 0.5 {
		t.Fatalf("unexpected ndc %v", ndc)
	}
	if back := ndc.ToWorld(100, 200); back != World(50, 150) {
		t.Fatalf("ndc round trip = %v", back)
	}
	if !ValidIn(SpaceNDC, -1, 1) || ValidIn(SpaceNDC, 1.01, 0) {
		t.Fatalf("ndc bounds check failed")
	}
	if !ValidIn(SpaceScreen, -1e9, 1e9) {
		t.Fatalf("screen space should be unbounded")
	}
	if ValidIn(SpaceWorld, ArenaWidth, 0) {
		t.Fatalf("world extent must be exclusive")
	}
}

func TestTileRegion(t *testing.T) {
	r := NewTileRegion(Tile(4, 6), Tile(2, 3))
	if r.Min != Tile(2, 3) || r.Max != Tile(4, 6) {
		t.Fatalf("corners not normalised: %+v", r)
	}
	if r.Width() != 3 || r.Height() != 4 || r.Area() != 12 {
		t.Fatalf("unexpected dimensions %dx%d", r.Width(), r.Height())
	}
	if !r.Contains(Tile(4, 6)) || r.Contains(Tile(5, 6)) {
		t.Fatalf("containment is wrong")
	}
	if got := r.Clamp(Tile(10, 0)); got != Tile(4, 3) {
		t.Fatalf("unexpected clamp %v", got)
	}
	tiles := r.Tiles()
	if len(tiles) != 12 || tiles[0] != Tile(2, 3) || tiles[11] != Tile(4, 6) {
		t.Fatalf("unexpected iteration order %v", tiles)
	}
	visited := 0
	r.Each(func(TilePos) bool {
		visited++
		return visited < 5
	})
	if visited != 5 {
		t.Fatalf("expected early stop after 5, got %d", visited)
	}
	around := RegionAround(Tile(0, 0), 2)
	if around.Area() != 25 {
		t.Fatalf("unexpected area %d", around.Area())
	}
	if _, ok := r.Intersect(TileRegion{Min: Tile(10, 10), Max: Tile(12, 12)}); ok {
		t.Fatalf("disjoint regions reported overlap")
	}
	if WorldRegion().Area() != ArenaWidthTiles*ArenaHeightTiles {
		t.Fatalf("world region has wrong area")
	}
	if FloorRegion().Height() != FloorHeightTiles {
		t.Fatalf("floor region has wrong height")
	}
}

func TestVisibleTileRangeAndAnchors(t *testing.T) {
	r := VisibleTileRange(World(64, 0), 320, 64, TileSize, 1)
	if r.Min != Tile(1, -1) || r.Max != Tile(13, 3) {
		t.Fatalf("unexpected viewport %+v", r)
	}
	if got := AnchorBottomRight.In(Tile(1, 1)); got != World(64, 64) {
		t.Fatalf("unexpected anchor position %v", got)
	}
	if got := AnchorCenter.In(Tile(1, 1)); got != Tile(1, 1).ToWorldCenter() {
		t.Fatalf("centre anchor disagrees with tile centre: %v", got)
	}
	if got := CustomAnchor(0.25, 0.75).In(Tile(0, 0)); got != World(8, 24) {
		t.Fatalf("unexpected custom anchor %v", got)
	}
	if TileRange(8).WorldDistance() != 256 {
		t.Fatalf("unexpected tile range conversion")
	}
}
