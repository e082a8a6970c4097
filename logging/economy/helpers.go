package economy

import (
	"context"

	"mech-arena/server/logging"
)

const (
	// EventPickupCollected is emitted when a player comes within pickup range of a resource.
	EventPickupCollected logging.EventType = "economy.pickup_collected"
	// EventPickupContested is emitted when several players reach the same pickup on one tick.
	EventPickupContested logging.EventType = "economy.pickup_contested"
)

// PickupPayload describes the collected resource.
type PickupPayload struct {
	Kind     string  `json:"kind"`
	Amount   int     `json:"amount"`
	Distance float64 `json:"distance"`
}

// ContestedPayload lists how many players reached the pickup.
type ContestedPayload struct {
	Kind     string `json:"kind"`
	Claimant int    `json:"claimants"`
}

// PickupCollected publishes an event crediting actor with a pickup.
func PickupCollected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, pickup logging.EntityRef, payload PickupPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPickupCollected,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{pickup},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// PickupContested publishes a debug event when ties are broken.
func PickupContested(ctx context.Context, pub logging.Publisher, tick uint64, pickup logging.EntityRef, payload ContestedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPickupContested,
		Tick:     tick,
		Actor:    pickup,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
