package spatial

import (
	"github.com/google/uuid"

	"mech-arena/server/internal/coords"
)

// Config holds per-category cell sizes and radii, all in tiles.
type Config struct {
	PlayerCellTiles     float64 `json:"playerCellTiles" yaml:"player_cell_tiles"`
	StructureCellTiles  float64 `json:"structureCellTiles" yaml:"structure_cell_tiles"`
	PickupCellTiles     float64 `json:"pickupCellTiles" yaml:"pickup_cell_tiles"`
	ProjectileCellTiles float64 `json:"projectileCellTiles" yaml:"projectile_cell_tiles"`

	PlayerRadiusTiles     float64 `json:"playerRadiusTiles" yaml:"player_radius_tiles"`
	StructureRadiusTiles  float64 `json:"structureRadiusTiles" yaml:"structure_radius_tiles"`
	PickupRadiusTiles     float64 `json:"pickupRadiusTiles" yaml:"pickup_radius_tiles"`
	ProjectileRadiusTiles float64 `json:"projectileRadiusTiles" yaml:"projectile_radius_tiles"`

	PickupDistanceTiles float64 `json:"pickupDistanceTiles" yaml:"pickup_distance_tiles"`
	WeaponRangeTiles    float64 `json:"weaponRangeTiles" yaml:"weapon_range_tiles"`
}

func DefaultConfig() Config {
	return Config{
		PlayerCellTiles:       2,
		StructureCellTiles:    4,
		PickupCellTiles:       3,
		ProjectileCellTiles:   1.5,
		PlayerRadiusTiles:     0.4,
		StructureRadiusTiles:  5,
		PickupRadiusTiles:     0.3,
		ProjectileRadiusTiles: 0.2,
		PickupDistanceTiles:   1.5,
		WeaponRangeTiles:      50,
	}
}

// Normalized replaces non-positive values with defaults.
func (c Config) Normalized() Config {
	def := DefaultConfig()
	fix := func(v *float64, fallback float64) {
		if *v <= 0 {
			*v = fallback
		}
	}
	fix(&c.PlayerCellTiles, def.PlayerCellTiles)
	fix(&c.StructureCellTiles, def.StructureCellTiles)
	fix(&c.PickupCellTiles, def.PickupCellTiles)
	fix(&c.ProjectileCellTiles, def.ProjectileCellTiles)
	fix(&c.PlayerRadiusTiles, def.PlayerRadiusTiles)
	fix(&c.StructureRadiusTiles, def.StructureRadiusTiles)
	fix(&c.PickupRadiusTiles, def.PickupRadiusTiles)
	fix(&c.ProjectileRadiusTiles, def.ProjectileRadiusTiles)
	fix(&c.PickupDistanceTiles, def.PickupDistanceTiles)
	fix(&c.WeaponRangeTiles, def.WeaponRangeTiles)
	return c
}

// Population is the authoritative entity set for one tick.
type Population struct {
	Players     []Entity[PlayerData]
	Structures  []Entity[StructureData]
	Pickups     []Entity[PickupData]
	Projectiles []Entity[ProjectileData]
}

// Hit is a projectile touching a player or structure.
type Hit struct {
	Projectile Entity[ProjectileData]
	Target     uuid.UUID
	Category   Category
	Distance   float64
}

// IndexDebugInfo reports occupancy of every category grid.
type IndexDebugInfo struct {
	Players     DebugInfo `json:"players"`
	Structures  DebugInfo `json:"structures"`
	Pickups     DebugInfo `json:"pickups"`
	Projectiles DebugInfo `json:"projectiles"`
}

// Index keeps one grid per entity category. It is rebuilt from scratch
// every tick and is owned by the tick driver.
type Index struct {
	cfg         Config
	players     *Grid[PlayerData]
	structures  *Grid[StructureData]
	pickups     *Grid[PickupData]
	projectiles *Grid[ProjectileData]
}

func NewIndex(cfg Config) *Index {
	cfg = cfg.Normalized()
	return &Index{
		cfg:         cfg,
		players:     NewArenaGrid[PlayerData](cfg.PlayerCellTiles * coords.TileSize),
		structures:  NewArenaGrid[StructureData](cfg.StructureCellTiles * coords.TileSize),
		pickups:     NewArenaGrid[PickupData](cfg.PickupCellTiles * coords.TileSize),
		projectiles: NewArenaGrid[ProjectileData](cfg.ProjectileCellTiles * coords.TileSize),
	}
}

func (idx *Index) Config() Config {
	return idx.cfg
}

func (idx *Index) Players() *Grid[PlayerData]         { return idx.players }
func (idx *Index) Structures() *Grid[StructureData]   { return idx.structures }
func (idx *Index) Pickups() *Grid[PickupData]         { return idx.pickups }
func (idx *Index) Projectiles() *Grid[ProjectileData] { return idx.projectiles }

// Rebuild clears every grid and reinserts pop. Entities without a radius
// receive their category default.
func (idx *Index) Rebuild(pop Population) {
	idx.players.Clear()
	idx.structures.Clear()
	idx.pickups.Clear()
	idx.projectiles.Clear()

	for _, e := range pop.Players {
		idx.players.Insert(withRadius(e, idx.cfg.PlayerRadiusTiles))
	}
	for _, e := range pop.Structures {
		idx.structures.Insert(withRadius(e, idx.cfg.StructureRadiusTiles))
	}
	for _, e := range pop.Pickups {
		idx.pickups.Insert(withRadius(e, idx.cfg.PickupRadiusTiles))
	}
	for _, e := range pop.Projectiles {
		idx.projectiles.Insert(withRadius(e, idx.cfg.ProjectileRadiusTiles))
	}
}

// PickupsInRange lists pickups within collection distance of p.
func (idx *Index) PickupsInRange(p coords.WorldPos) []QueryResult[PickupData] {
	return idx.pickups.QueryRadius(p, idx.cfg.PickupDistanceTiles*coords.TileSize)
}

// PlayersNear lists players within radius of p.
func (idx *Index) PlayersNear(p coords.WorldPos, radius float64) []QueryResult[PlayerData] {
	return idx.players.QueryRadius(p, radius)
}

// StructuresNear lists structures within radius of p.
func (idx *Index) StructuresNear(p coords.WorldPos, radius float64) []QueryResult[StructureData] {
	return idx.structures.QueryRadius(p, radius)
}

// OutdoorPlayersNear is PlayersNear without players inside structures.
// Their folded positions share rows with the arena and must not claim
// arena entities.
func (idx *Index) OutdoorPlayersNear(p coords.WorldPos, radius float64) []QueryResult[PlayerData] {
	results := idx.players.QueryRadius(p, radius)
	kept := results[:0]
	for _, r := range results {
		if !r.Entity.Data.Indoors() {
			kept = append(kept, r)
		}
	}
	return kept
}

// NearestTarget finds the closest outdoor player within weapon range of p
// other than shooter.
func (idx *Index) NearestTarget(p coords.WorldPos, shooter uuid.UUID) (QueryResult[PlayerData], bool) {
	return idx.players.NearestWhere(p, idx.cfg.WeaponRangeTiles*coords.TileSize, func(e Entity[PlayerData]) bool {
		return e.ID != shooter && !e.Data.Indoors()
	})
}

// NearestStructure finds the closest structure within maxDistance of p.
func (idx *Index) NearestStructure(p coords.WorldPos, maxDistance float64) (QueryResult[StructureData], bool) {
	return idx.structures.Nearest(p, maxDistance)
}

// ProjectileHits lists every outdoor player or structure each projectile
// touches. A projectile never hits its owner. Results are grouped by projectile in
// id order, nearest target first.
func (idx *Index) ProjectileHits() []Hit {
	var hits []Hit
	for _, proj := range idx.projectiles.All() {
		for _, r := range idx.OutdoorPlayersNear(proj.Position, proj.Radius) {
			if r.Entity.ID == proj.Data.Owner {
				continue
			}
			hits = append(hits, Hit{Projectile: proj, Target: r.Entity.ID, Category: CategoryPlayer, Distance: r.Distance})
		}
		for _, r := range idx.structures.QueryRadius(proj.Position, proj.Radius) {
			hits = append(hits, Hit{Projectile: proj, Target: r.Entity.ID, Category: CategoryStructure, Distance: r.Distance})
		}
	}
	return hits
}

// Around lists entities of every category reaching within radius of p,
// nearest first.
func (idx *Index) Around(p coords.WorldPos, radius float64) []QueryResult[Payload] {
	var out []QueryResult[Payload]
	for _, r := range idx.players.QueryRadius(p, radius) {
		out = append(out, widen(r))
	}
	for _, r := range idx.structures.QueryRadius(p, radius) {
		out = append(out, widen(r))
	}
	for _, r := range idx.pickups.QueryRadius(p, radius) {
		out = append(out, widen(r))
	}
	for _, r := range idx.projectiles.QueryRadius(p, radius) {
		out = append(out, widen(r))
	}
	sortResults(out)
	return out
}

func (idx *Index) DebugInfo() IndexDebugInfo {
	return IndexDebugInfo{
		Players:     idx.players.DebugInfo(),
		Structures:  idx.structures.DebugInfo(),
		Pickups:     idx.pickups.DebugInfo(),
		Projectiles: idx.projectiles.DebugInfo(),
	}
}

func withRadius[T any](e Entity[T], tiles float64) Entity[T] {
	if e.Radius <= 0 {
		e.Radius = tiles * coords.TileSize
	}
	return e
}
