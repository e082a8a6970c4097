package visibility

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/interior"
	"mech-arena/server/logging"
	loggingspatial "mech-arena/server/logging/spatial"
)

var arenaCentre = coords.Tile(50, 50)

func occluderWith(tiles map[coords.TilePos]Occlusion) Occluder {
	return OccluderFunc(func(t coords.TilePos) Occlusion {
		return tiles[t]
	})
}

func recomputed(t *testing.T, cfg Config, deps Deps, pos coords.WorldPos) *Engine {
	t.Helper()
	e := NewEngine(uuid.New(), cfg, deps)
	e.Recompute(context.Background(), 1, pos)
	return e
}

func TestBaseVisibilityFallsOffLinearly(t *testing.T) {
	reach := DefaultConfig().Range()
	prev := BaseVisibility(0, reach)
	assert.Equal(t, 1.0, prev)
	for d := 1.0; d <= reach; d++ {
		v := BaseVisibility(d, reach)
		require.LessOrEqual(t, v, prev, "distance %.0f", d)
		prev = v
	}
	assert.Equal(t, 0.0, BaseVisibility(reach, reach))
	assert.Equal(t, 0.0, BaseVisibility(reach*2, reach))
	assert.Equal(t, 0.0, BaseVisibility(10, 0))
}

func TestOpenFieldDecaysAlongRay(t *testing.T) {
	e := recomputed(t, DefaultConfig(), Deps{}, arenaCentre.ToWorldCenter())

	assert.Equal(t, 1.0, e.Visibility(arenaCentre))
	for k := 0; k < 9; k++ {
		near := e.Visibility(arenaCentre.Offset(k, 0))
		far := e.Visibility(arenaCentre.Offset(k+1, 0))
		require.GreaterOrEqual(t, near, far, "step %d", k)
	}
	// Tile +8 is entered 240 units out, tile +9 lies beyond the range.
	assert.InDelta(t, 1-240.0/256, e.Visibility(arenaCentre.Offset(8, 0)), 1e-9)
	assert.False(t, e.IsVisible(arenaCentre.Offset(9, 0)))
	assert.Equal(t, 0.0, e.Visibility(arenaCentre.Offset(9, 0)))
}

func TestWallTerminatesRays(t *testing.T) {
	walls := make(map[coords.TilePos]Occlusion)
	for y := 30; y <= 70; y++ {
		walls[coords.Tile(53, y)] = OcclusionWall
	}
	e := recomputed(t, DefaultConfig(), Deps{Occluder: occluderWith(walls)}, arenaCentre.ToWorldCenter())

	wall := coords.Tile(53, 50)
	require.True(t, e.IsVisible(wall))
	assert.InDelta(t, (1-80.0/256)*0.1, e.Visibility(wall), 1e-9)

	coords.RegionAround(arenaCentre, 10).Each(func(tile coords.TilePos) bool {
		if tile.X > 53 {
			assert.LessOrEqual(t, e.Visibility(tile), 0.15, "tile %v", tile)
			assert.False(t, e.IsVisible(tile), "tile %v", tile)
		}
		return true
	})
	assert.Greater(t, e.Visibility(coords.Tile(52, 50)), 0.5)
}

func TestWindowAttenuatesWithoutBlocking(t *testing.T) {
	window := coords.Tile(53, 50)
	open := recomputed(t, DefaultConfig(), Deps{}, arenaCentre.ToWorldCenter())
	glazed := recomputed(t, DefaultConfig(), Deps{
		Occluder: occluderWith(map[coords.TilePos]Occlusion{window: OcclusionWindow}),
	}, arenaCentre.ToWorldCenter())

	assert.InDelta(t, 0.8*open.Visibility(window), glazed.Visibility(window), 1e-12)
	beyond := window.Offset(1, 0)
	assert.InDelta(t, open.Visibility(beyond), glazed.Visibility(beyond), 1e-12)
	assert.Greater(t, glazed.Visibility(beyond), 0.0)
}

func TestStructureOcclusionFactors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1.0, cfg.attenuation(OcclusionClear))
	assert.Equal(t, 0.8, cfg.attenuation(OcclusionWindow))
	assert.Equal(t, 0.7, cfg.attenuation(OcclusionDoor))
	assert.Equal(t, 0.1, cfg.attenuation(OcclusionWall))
	assert.Equal(t, 0.2, cfg.attenuation(OcclusionStructureWall))

	assert.False(t, OcclusionDoor.Blocks())
	assert.False(t, OcclusionWindow.Blocks())
	assert.True(t, OcclusionWall.Blocks())
	assert.True(t, OcclusionStructureWall.Blocks())

	door := coords.Tile(53, 50)
	e := recomputed(t, cfg, Deps{
		Occluder: occluderWith(map[coords.TilePos]Occlusion{door: OcclusionDoor}),
	}, arenaCentre.ToWorldCenter())
	assert.InDelta(t, (1-80.0/256)*0.7, e.Visibility(door), 1e-9)
	assert.True(t, e.IsVisible(door.Offset(1, 0)))
}

func TestZeroVisibilityIsNeverStored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WallFactor = 0
	wall := coords.Tile(52, 50)
	e := recomputed(t, cfg, Deps{
		Occluder: occluderWith(map[coords.TilePos]Occlusion{wall: OcclusionWall}),
	}, arenaCentre.ToWorldCenter())

	snap := e.Snapshot()
	_, stored := snap.Exterior[wall]
	assert.False(t, stored)
	assert.False(t, e.IsVisible(wall))
	for tile, v := range snap.Exterior {
		require.Greater(t, v, 0.0, "tile %v", tile)
	}
}

func TestUpdateThrottlesByTicksAndDistance(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(uuid.New(), DefaultConfig(), Deps{})
	pos := arenaCentre.ToWorldCenter()

	_, ok := e.LastPosition()
	assert.False(t, ok)

	assert.False(t, e.Update(ctx, 1, pos))
	assert.False(t, e.Update(ctx, 2, pos))
	assert.True(t, e.Update(ctx, 3, pos), "first eligible frame always computes")

	last, ok := e.LastPosition()
	require.True(t, ok)
	assert.Equal(t, pos, last)

	assert.False(t, e.Update(ctx, 4, pos))
	assert.False(t, e.Update(ctx, 5, pos))
	assert.False(t, e.Update(ctx, 6, pos.Add(coords.World(10, 0))), "moved less than the threshold")

	moved := pos.Add(coords.World(20, 0))
	assert.False(t, e.Update(ctx, 7, moved))
	assert.False(t, e.Update(ctx, 8, moved))
	assert.True(t, e.Update(ctx, 9, moved))

	assert.False(t, e.ForceUpdate(ctx, 10, moved), "force still waits for the frame cadence")
	_, ok = e.LastPosition()
	assert.False(t, ok)
	assert.False(t, e.Update(ctx, 11, moved))
	assert.True(t, e.Update(ctx, 12, moved))
}

func TestInteriorVisibilityEndToEnd(t *testing.T) {
	registry := interior.NewRegistry(interior.DefaultFootprint())
	id := uuid.New()
	registry.Put(interior.Structure{ID: id, Base: coords.Tile(10, 10)})

	viewer := coords.World(8*coords.TileSize, 10*coords.TileSize)
	e := recomputed(t, DefaultConfig(), Deps{Structures: registry}, viewer)

	v, err := e.InteriorVisibilityFor(id, 0, coords.Tile(1, 1))
	require.NoError(t, err)
	assert.Greater(t, v, 0.0)
	assert.NotEmpty(t, e.InteriorFor(id))

	key := InteriorKey{Structure: id, Location: interior.Location{Floor: 0, Tile: coords.Tile(1, 1)}}
	assert.Equal(t, v, e.InteriorVisibility(key))
	assert.Equal(t, v > 0.1, e.IsInteriorVisible(key))

	far := coords.World(20*coords.TileSize+500, 10*coords.TileSize)
	e.Recompute(context.Background(), 2, far)
	v, err = e.InteriorVisibilityFor(id, 2, coords.Tile(8, 8))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	assert.Empty(t, e.InteriorFor(id))
}

func TestInteriorVisibilityForMissingStructure(t *testing.T) {
	registry := interior.NewRegistry(interior.DefaultFootprint())
	id := uuid.New()
	registry.Put(interior.Structure{ID: id, Base: coords.Tile(10, 10)})
	e := recomputed(t, DefaultConfig(), Deps{Structures: registry}, coords.World(256, 320))

	_, err := e.InteriorVisibilityFor(uuid.New(), 0, coords.Tile(1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, interior.ErrStructureNotFound))

	registry.Remove(id)
	_, err = e.InteriorVisibilityFor(id, 0, coords.Tile(1, 1))
	assert.ErrorIs(t, err, interior.ErrStructureNotFound)

	bare := NewEngine(uuid.New(), DefaultConfig(), Deps{})
	_, err = bare.InteriorVisibilityFor(id, 0, coords.Tile(1, 1))
	assert.ErrorIs(t, err, interior.ErrStructureNotFound)
}

func TestSnapshotIsDetached(t *testing.T) {
	e := recomputed(t, DefaultConfig(), Deps{}, arenaCentre.ToWorldCenter())
	snap := e.Snapshot()
	before := snap.Visibility(arenaCentre)

	e.Recompute(context.Background(), 2, coords.Tile(10, 10).ToWorldCenter())
	assert.Equal(t, before, snap.Visibility(arenaCentre))
	assert.True(t, snap.IsVisible(arenaCentre))
	assert.False(t, e.IsVisible(arenaCentre))

	tiles := snap.Tiles()
	require.Len(t, tiles, len(snap.Exterior))
	for i := 1; i < len(tiles); i++ {
		require.True(t, tileLess(tiles[i-1].Tile, tiles[i].Tile))
	}
	assert.Len(t, e.VisibleTiles(), e.Snapshot().visible.Size())
}

func TestRecomputePublishesEvent(t *testing.T) {
	var events []logging.Event
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		events = append(events, event)
	})
	viewer := uuid.New()
	e := NewEngine(viewer, DefaultConfig(), Deps{Publisher: pub})
	e.Recompute(context.Background(), 42, arenaCentre.ToWorldCenter())

	require.Len(t, events, 1)
	assert.Equal(t, loggingspatial.EventVisibilityRecomputed, events[0].Type)
	assert.Equal(t, uint64(42), events[0].Tick)
	assert.Equal(t, viewer.String(), events[0].Actor.ID)
	payload, ok := events[0].Payload.(loggingspatial.VisibilityRecomputedPayload)
	require.True(t, ok)
	assert.True(t, payload.Forced)
	assert.Positive(t, payload.VisibleTiles)
}

func TestEdgeFadeAndFog(t *testing.T) {
	snap := Snapshot{Exterior: map[coords.TilePos]float64{coords.Tile(0, 0): 1}}

	assert.Equal(t, 1.0, snap.EdgeFade(coords.Tile(0, 0), 4))
	assert.InDelta(t, 0.5, snap.EdgeFade(coords.Tile(2, 1), 4), 1e-12)
	assert.InDelta(t, 0.0, snap.EdgeFade(coords.Tile(4, -4), 4), 1e-12)
	assert.Equal(t, 0.0, snap.EdgeFade(coords.Tile(5, 0), 4))
	assert.Equal(t, 0.0, snap.EdgeFade(coords.Tile(1, 0), 0))

	assert.Equal(t, 1.0, FogStrength(-0.5))
	assert.Equal(t, 0.0, FogStrength(1.5))
	assert.InDelta(t, 0.75, FogStrength(0.25), 1e-12)

	white := Color{R: 1, G: 1, B: 1}
	assert.Equal(t, FogColor, ApplyFog(white, 0))
	assert.Equal(t, white, ApplyFog(white, 1))
}

func TestConfigNormalized(t *testing.T) {
	cfg := Config{RayCount: -1, StepFraction: 3, WindowFactor: 2, MoveThreshold: -1}.Normalized()
	def := DefaultConfig()
	assert.Equal(t, def.RayCount, cfg.RayCount)
	assert.Equal(t, def.StepFraction, cfg.StepFraction)
	assert.Equal(t, def.RangeTiles, cfg.RangeTiles)
	assert.Equal(t, def.WindowFactor, cfg.WindowFactor)
	assert.Equal(t, def.MoveThreshold, cfg.MoveThreshold)
	assert.Equal(t, def.Interior, cfg.Interior)
	assert.Equal(t, 256.0, def.Range())
	assert.Equal(t, 16.0, def.Step())
}
