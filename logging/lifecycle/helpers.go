package lifecycle

import (
	"context"

	"mech-arena/server/logging"
)

const (
	// EventViewerAttached is emitted when the driver starts tracking visibility for a new viewer.
	EventViewerAttached logging.EventType = "lifecycle.viewer_attached"
	// EventViewerDetached is emitted when a viewer disappears from the frame and its engine is dropped.
	EventViewerDetached logging.EventType = "lifecycle.viewer_detached"
	// EventStructureEntered is emitted when a player walks through a structure door.
	EventStructureEntered logging.EventType = "lifecycle.structure_entered"
)

// ViewerAttachedPayload records where the viewer was first seen.
type ViewerAttachedPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ViewerDetachedPayload records how long the viewer was tracked.
type ViewerDetachedPayload struct {
	TrackedTicks uint64 `json:"trackedTicks"`
}

// StructureEnteredPayload records the door used and the floor-local arrival point.
type StructureEnteredPayload struct {
	DoorX  int     `json:"doorX"`
	DoorY  int     `json:"doorY"`
	EntryX float64 `json:"entryX"`
	EntryY float64 `json:"entryY"`
}

// ViewerAttached publishes an info event for a newly tracked viewer.
func ViewerAttached(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ViewerAttachedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventViewerAttached,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ViewerDetached publishes an info event when a viewer is dropped.
func ViewerDetached(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ViewerDetachedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventViewerDetached,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// StructureEntered publishes an info event when actor moves inside structure.
func StructureEntered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, structure logging.EntityRef, payload StructureEnteredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStructureEntered,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{structure},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
