package simulation

import (
	"context"

	"mech-arena/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when one driver step takes longer than the tick interval.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventTicksSkipped is emitted when the loop drops ticks to catch up with the wall clock.
	EventTicksSkipped logging.EventType = "simulation.ticks_skipped"
)

// TickBudgetOverrunPayload captures timing for a slow step, split by phase.
type TickBudgetOverrunPayload struct {
	DurationMillis   int64   `json:"durationMillis"`
	BudgetMillis     int64   `json:"budgetMillis"`
	Ratio            float64 `json:"ratio"`
	Streak           uint64  `json:"streak"`
	VisibilityMillis int64   `json:"visibilityMillis,omitempty"`
}

// TickBudgetOverrun publishes a warning when a step exceeds the budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// TicksSkippedPayload reports how far the loop fell behind.
type TicksSkippedPayload struct {
	Skipped uint64 `json:"skipped"`
}

// TicksSkipped publishes an error event when ticks are dropped.
func TicksSkipped(ctx context.Context, pub logging.Publisher, tick uint64, payload TicksSkippedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventTicksSkipped,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityError,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
