package network

import (
	"context"

	"mech-arena/server/logging"
)

const (
	// EventFeedOpened is emitted when a debug feed subscriber connects.
	EventFeedOpened logging.EventType = "network.feed_opened"
	// EventFeedClosed is emitted when a debug feed subscriber goes away.
	EventFeedClosed logging.EventType = "network.feed_closed"
)

// FeedPayload identifies the subscription.
type FeedPayload struct {
	Viewer string `json:"viewer"`
	Remote string `json:"remote,omitempty"`
	Frames uint64 `json:"frames,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// FeedOpened publishes a debug event for a new feed subscriber.
func FeedOpened(ctx context.Context, pub logging.Publisher, tick uint64, payload FeedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFeedOpened,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: payload.Viewer, Kind: logging.EntityKindViewer},
		Severity: logging.SeverityDebug,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// FeedClosed publishes a debug event when a subscriber disconnects.
func FeedClosed(ctx context.Context, pub logging.Publisher, tick uint64, payload FeedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFeedClosed,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: payload.Viewer, Kind: logging.EntityKindViewer},
		Severity: logging.SeverityDebug,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
