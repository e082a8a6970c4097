package world

import (
	"math/rand"

	"github.com/google/uuid"

	"mech-arena/server/internal/coords"
	"mech-arena/server/internal/interior"
)

const (
	// StructureMarginTiles keeps structures apart from each other and from
	// the arena edge.
	StructureMarginTiles = 2
	// SpawnSafeRadiusTiles keeps the centre of the arena open.
	SpawnSafeRadiusTiles = 6
)

// ArenaCenter is the tile at the middle of the arena.
func ArenaCenter() coords.TilePos {
	return coords.Tile(coords.ArenaWidthTiles/2, coords.ArenaHeightTiles/2)
}

// SpawnSafeRegion is the open square around the arena centre.
func SpawnSafeRegion() coords.TileRegion {
	return coords.RegionAround(ArenaCenter(), SpawnSafeRadiusTiles)
}

// Generate scatters structures and wall runs deterministically from the
// configured seed.
func Generate(cfg Config) *Layout {
	cfg = cfg.normalized()
	layout := NewLayout(cfg.Footprint)
	placeStructures(layout, cfg, NewDeterministicRNG(cfg.Seed, "world.structures"))
	placeWallRuns(layout, cfg, NewDeterministicRNG(cfg.Seed, "world.walls"))
	return layout
}

// Reserved covers every virtual interior row of a structure plus its
// ground footprint. Generated terrain never overlaps it.
func Reserved(f interior.Footprint, base coords.TilePos) coords.TileRegion {
	bounds := f.WorldBounds(base)
	ground := f.GroundRegion(base)
	return coords.NewTileRegion(base, coords.Tile(
		max(bounds.Max.X, ground.Max.X),
		max(bounds.Max.Y, ground.Max.Y),
	))
}

func expand(r coords.TileRegion, by int) coords.TileRegion {
	return coords.NewTileRegion(r.Min.Offset(-by, -by), r.Max.Offset(by, by))
}

func placeStructures(layout *Layout, cfg Config, rng *rand.Rand) {
	if cfg.Structures <= 0 {
		return
	}
	footprint := cfg.Footprint
	probe := Reserved(footprint, coords.Tile(0, 0))
	width, height := probe.Width(), probe.Height()

	maxX := coords.ArenaWidthTiles - StructureMarginTiles - width
	maxY := coords.ArenaHeightTiles - StructureMarginTiles - height
	if maxX < StructureMarginTiles || maxY < StructureMarginTiles {
		return
	}

	var placed []coords.TileRegion
	attempts := 0
	maxAttempts := cfg.Structures * 20

	for len(placed) < cfg.Structures && attempts < maxAttempts {
		attempts++

		base := coords.Tile(
			RandomTileIn(rng, StructureMarginTiles, maxX),
			RandomTileIn(rng, StructureMarginTiles, maxY),
		)
		candidate := Reserved(footprint, base)

		if _, hit := footprint.GroundRegion(base).Intersect(SpawnSafeRegion()); hit {
			continue
		}

		overlapsExisting := false
		for _, other := range placed {
			if _, hit := expand(candidate, StructureMarginTiles).Intersect(other); hit {
				overlapsExisting = true
				break
			}
		}
		if overlapsExisting {
			continue
		}

		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			continue
		}
		layout.structures.Put(interior.Structure{ID: id, Base: base})
		placed = append(placed, candidate)
	}
	layout.reindex()
}

func placeWallRuns(layout *Layout, cfg Config, rng *rand.Rand) {
	if cfg.WallRuns <= 0 {
		return
	}
	footprint := layout.Footprint()
	var blocked []coords.TileRegion
	for _, s := range layout.structures.All() {
		blocked = append(blocked, expand(Reserved(footprint, s.Base), 1))
	}
	blocked = append(blocked, SpawnSafeRegion())

	runs := 0
	attempts := 0
	maxAttempts := cfg.WallRuns * 20

	for runs < cfg.WallRuns && attempts < maxAttempts {
		attempts++

		start := coords.Tile(
			RandomTileIn(rng, 1, coords.ArenaWidthTiles-2),
			RandomTileIn(rng, 1, coords.ArenaHeightTiles-2),
		)
		length := RandomTileIn(rng, cfg.WallRunMin, cfg.WallRunMax)
		end := start.Offset(length-1, 0)
		if rng.Intn(2) == 1 {
			end = start.Offset(0, length-1)
		}
		run := coords.NewTileRegion(start, end)
		if !run.Max.InWorldBounds() {
			continue
		}

		overlaps := false
		for _, region := range blocked {
			if _, hit := run.Intersect(region); hit {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		run.Each(func(pos coords.TilePos) bool {
			kind := TileWall
			if rng.Float64() < cfg.WindowChance {
				kind = TileWindow
			}
			layout.SetTile(pos, kind)
			return true
		})
		runs++
	}
}
