package spatial

import (
	"context"

	"mech-arena/server/logging"
)

const (
	// EventIndexRebuilt is emitted after the spatial index is cleared and repopulated for a tick.
	EventIndexRebuilt logging.EventType = "spatial.index_rebuilt"
	// EventMovementAdjusted is emitted when collision resolution moves an entity away from its desired position.
	EventMovementAdjusted logging.EventType = "spatial.movement_adjusted"
	// EventStructureMissing is emitted when a lookup names a structure that is no longer registered.
	EventStructureMissing logging.EventType = "spatial.structure_missing"
	// EventVisibilityRecomputed is emitted when a viewer's visibility mask is rebuilt.
	EventVisibilityRecomputed logging.EventType = "spatial.visibility_recomputed"
	// EventProjectileHit is emitted when a projectile overlaps a target.
	EventProjectileHit logging.EventType = "spatial.projectile_hit"
)

// IndexRebuiltPayload captures per-category population counts after a rebuild.
type IndexRebuiltPayload struct {
	Players     int `json:"players"`
	Structures  int `json:"structures"`
	Pickups     int `json:"pickups"`
	Projectiles int `json:"projectiles"`
}

// IndexRebuilt publishes a debug event after the index rebuild phase.
func IndexRebuilt(ctx context.Context, pub logging.Publisher, tick uint64, payload IndexRebuiltPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventIndexRebuilt,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityDebug,
		Category: "spatial",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// MovementAdjustedPayload records how far resolution moved an entity from where it wanted to go.
type MovementAdjustedPayload struct {
	DesiredX  float64 `json:"desiredX"`
	DesiredY  float64 `json:"desiredY"`
	ResolvedX float64 `json:"resolvedX"`
	ResolvedY float64 `json:"resolvedY"`
	Contacts  int     `json:"contacts"`
}

// MovementAdjusted publishes a debug event when movement was corrected.
func MovementAdjusted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MovementAdjustedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventMovementAdjusted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "spatial",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// StructureMissingPayload names the lookup that failed.
type StructureMissingPayload struct {
	StructureID string `json:"structureId"`
	Operation   string `json:"operation"`
}

// StructureMissing publishes a warning when a structure id no longer resolves.
func StructureMissing(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StructureMissingPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventStructureMissing,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "spatial",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// VisibilityRecomputedPayload summarises a fresh visibility pass.
type VisibilityRecomputedPayload struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	VisibleTiles  int     `json:"visibleTiles"`
	InteriorTiles int     `json:"interiorTiles"`
	Forced        bool    `json:"forced,omitempty"`
}

// VisibilityRecomputed publishes a debug event after a viewer's mask is rebuilt.
func VisibilityRecomputed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload VisibilityRecomputedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventVisibilityRecomputed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "spatial",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ProjectileHitPayload describes a projectile overlap.
type ProjectileHitPayload struct {
	TargetCategory string  `json:"targetCategory"`
	Distance       float64 `json:"distance"`
	Damage         float64 `json:"damage"`
}

// ProjectileHit publishes an info event for a projectile overlapping target.
func ProjectileHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload ProjectileHitPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventProjectileHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
