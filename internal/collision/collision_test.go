package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mech-arena/server/internal/coords"
)

func box(x0, y0, x1, y1 float64) AABB {
	return NewAABB(coords.World(x0, y0), coords.World(x1, y1))
}

func TestAABBOverlapBound(t *testing.T) {
	a := box(0, 0, 10, 10)
	b := box(5, 5, 15, 15)
	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))

	m, ok := AABBvsAABB(a, b)
	require.True(t, ok)
	assert.Greater(t, m.Depth, 0.0)
	assert.LessOrEqual(t, m.Depth, 5.0)
	assert.Equal(t, coords.World(7.5, 7.5), m.Contact)
}

func TestAABBEdgesAndPoints(t *testing.T) {
	a := box(0, 0, 10, 10)
	assert.False(t, a.Intersects(box(10, 0, 20, 10)), "shared edge is not overlap")
	assert.True(t, a.ContainsPoint(coords.World(10, 10)), "boundary is contained")
	assert.False(t, a.ContainsPoint(coords.World(10.01, 5)))

	inverted := NewAABB(coords.World(10, 10), coords.World(0, -5))
	assert.LessOrEqual(t, inverted.Min.X, inverted.Max.X)
	assert.LessOrEqual(t, inverted.Min.Y, inverted.Max.Y)

	shrunk := a.Expand(-100)
	assert.LessOrEqual(t, shrunk.Min.X, shrunk.Max.X)
	assert.Equal(t, a.Center(), shrunk.Center())

	w, h := a.Expand(2).Size()
	assert.Equal(t, 14.0, w)
	assert.Equal(t, 14.0, h)
	assert.Equal(t, box(5, 5, 15, 15), a.Translate(coords.World(5, 5)))
}

func TestManifoldSeparatesFirstBox(t *testing.T) {
	a := box(0, 0, 10, 10)
	b := box(8, -20, 30, 30)
	m, ok := AABBvsAABB(a, b)
	require.True(t, ok)
	assert.Equal(t, coords.World(1, 0), m.Normal)
	assert.Equal(t, 2.0, m.Depth)

	moved := a.Translate(m.Separation())
	assert.False(t, moved.Intersects(b))

	sep, ok := Separation(Shape{Box: a}, Shape{Box: b})
	require.True(t, ok)
	assert.Equal(t, coords.World(-2, 0), sep)

	_, ok = AABBvsAABB(a, box(50, 50, 60, 60))
	assert.False(t, ok)
}

func TestFilterMutualAgreement(t *testing.T) {
	assert.True(t, PlayerFilter().CanCollideWith(StructureFilter()))
	assert.True(t, PlayerFilter().CanCollideWith(WorldFilter()))
	assert.False(t, PlayerFilter().CanCollideWith(PlayerFilter()))
	assert.True(t, StructureFilter().CanCollideWith(StructureFilter()))
	assert.True(t, ProjectileFilter().CanCollideWith(WorldFilter()))
	assert.False(t, ProjectileFilter().CanCollideWith(PlayerFilter()))
	assert.False(t, PickupFilter().CanCollideWith(PlayerFilter()))

	oneSided := NewFilter([]Layer{LayerPickup}, []Layer{LayerPlayer})
	assert.False(t, oneSided.CanCollideWith(PlayerFilter()))
}

func TestShapeMovedToKeepsAnchor(t *testing.T) {
	p := PlayerShape(coords.World(50, 50), 10).MovedTo(coords.World(100, 20))
	assert.Equal(t, coords.World(100, 20), p.Box.Center())
	assert.Equal(t, coords.World(100, 20), p.Position())

	s := StructureShape(coords.World(320, 320), 10).MovedTo(coords.World(0, 64))
	assert.Equal(t, coords.World(0, 64), s.Box.Min)
	w, h := s.Box.Size()
	assert.Equal(t, 320.0, w)
	assert.Equal(t, 320.0, h)
}

func wall() Shape {
	return WallShape(coords.TileRegion{Min: coords.Tile(3, 0), Max: coords.Tile(3, 5)})
}

func TestSafeMovementSlidesAlongWall(t *testing.T) {
	player := PlayerShape(coords.World(80, 100), 10)
	safe := SafeMovement(coords.World(80, 100), coords.World(20, 5), player, []Shape{wall()})
	assert.InDelta(t, 6.0, safe.X, 1e-9)
	assert.InDelta(t, 5.0, safe.Y, 1e-9, "tangential movement is kept")

	final := player.MovedTo(coords.World(80, 100).Add(safe))
	assert.False(t, final.Box.Intersects(wall().Box))
}

func TestSafeMovementSkipsNonSolidAndFilteredObstacles(t *testing.T) {
	player := PlayerShape(coords.World(80, 100), 10)
	desired := coords.World(20, 5)

	trigger := wall()
	trigger.Response = ResponseTrigger
	assert.Equal(t, desired, SafeMovement(coords.World(80, 100), desired, player, []Shape{trigger}))

	other := PlayerShape(coords.World(100, 105), 10)
	assert.Equal(t, desired, SafeMovement(coords.World(80, 100), desired, player, []Shape{other}))
}

func TestSafeMovementIsDiscrete(t *testing.T) {
	player := PlayerShape(coords.World(80, 100), 10)
	desired := coords.World(200, 0)
	assert.Equal(t, desired, SafeMovement(coords.World(80, 100), desired, player, []Shape{wall()}),
		"a step that lands beyond a thin wall passes through it")
}

func TestSafeMovementHandlesCorners(t *testing.T) {
	player := PlayerShape(coords.World(50, 50), 10)
	walls := []Shape{
		WallShape(coords.TileRegion{Min: coords.Tile(2, 0), Max: coords.Tile(2, 4)}),
		WallShape(coords.TileRegion{Min: coords.Tile(0, 2), Max: coords.Tile(4, 2)}),
	}
	safe := SafeMovement(coords.World(50, 50), coords.World(12, 12), player, walls)
	final := player.MovedTo(coords.World(50, 50).Add(safe))
	for _, w := range walls {
		assert.False(t, final.Box.Intersects(w.Box))
	}
}

func TestContactsAndRespond(t *testing.T) {
	player := PlayerShape(coords.World(100, 100), 10)
	pushable := StructureShape(coords.World(105, 80), 1)
	pushable.Response = ResponsePush
	obstacles := []Shape{wall(), pushable, PlayerShape(coords.World(100, 100), 10)}

	contacts := Contacts(player, obstacles)
	require.Len(t, contacts, 2)
	assert.Equal(t, 0, contacts[0].Index)
	assert.Equal(t, LayerWorld, contacts[0].Layer)
	assert.Equal(t, 1, contacts[1].Index)

	block := Respond(contacts[0])
	assert.Equal(t, contacts[0].Manifold.Separation(), block.Correction)
	assert.False(t, block.Damage)

	push := Respond(contacts[1])
	assert.Equal(t, push.Correction.Scale(-1), push.Push)

	dmg := Respond(Contact{Manifold: contacts[0].Manifold, Response: ResponseDamage})
	assert.True(t, dmg.Damage)
	assert.True(t, Respond(Contact{Response: ResponseTrigger}).Triggered)
	assert.Equal(t, Action{}, Respond(Contact{Response: ResponseNone}))
}

func TestRunOverDetection(t *testing.T) {
	pos := coords.World(0, 0)
	target := coords.World(10, 0)
	assert.True(t, ShouldCauseRunOverDamage(coords.World(2, 0), pos, target, 1))
	assert.False(t, ShouldCauseRunOverDamage(coords.World(-2, 0), pos, target, 1))
	assert.False(t, ShouldCauseRunOverDamage(coords.World(0.1, 0), pos, target, 1))
	assert.False(t, ShouldCauseRunOverDamage(coords.World(2, 0), pos, pos, 1))
	assert.False(t, ShouldCauseRunOverDamage(coords.World(1, 2), pos, target, 1), "more than 60 degrees off is not a hit")
}

func TestPushOutOfObstacles(t *testing.T) {
	b := &Body{Position: coords.World(100, 100), Radius: 10}
	PushOutOfObstacles(b, []Shape{wall()}, ArenaBounds())
	assert.Equal(t, coords.World(86, 100), b.Position)
	assert.False(t, CircleBoxOverlap(b.Position, b.Radius, wall().Box))

	grazing := &Body{Position: coords.World(90, 100), Radius: 10}
	PushOutOfObstacles(grazing, []Shape{wall()}, ArenaBounds())
	assert.InDelta(t, 86.0, grazing.Position.X, 1e-9)
}

func TestResolveOverlapsSeparatesBodies(t *testing.T) {
	a := &Body{Position: coords.World(500, 500), Radius: 12.8}
	b := &Body{Position: coords.World(505, 500), Radius: 12.8}
	c := &Body{Position: coords.World(500, 500), Radius: 12.8}
	ResolveOverlaps([]*Body{a, b, c, nil}, nil, ArenaBounds())

	bodies := []*Body{a, b, c}
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[i].Position.DistanceTo(bodies[j].Position)
			assert.Greater(t, d, 10.0, "bodies %d and %d still stacked", i, j)
		}
	}

	edge := &Body{Position: coords.World(-40, 10), Radius: 5}
	ResolveOverlaps([]*Body{edge}, nil, ArenaBounds())
	assert.Equal(t, coords.World(-40, 10), edge.Position, "a lone body outside obstacles is left alone")
}

func TestResolveOverlapsSplitsCoincidentBodiesInOnePass(t *testing.T) {
	a := &Body{Position: coords.World(500, 500), Radius: 10}
	b := &Body{Position: coords.World(500, 500), Radius: 10}
	ResolveOverlaps([]*Body{a, b}, nil, ArenaBounds())

	assert.Equal(t, coords.World(490, 500), a.Position)
	assert.Equal(t, coords.World(510, 500), b.Position)
	assert.Equal(t, 20.0, a.Position.DistanceTo(b.Position))
}
