package sim

import (
	"context"
	"math"
	"time"

	"mech-arena/server/logging/simulation"
)

// FrameSource produces the authoritative entity set for each tick. last is
// the previous tick's result, zero on the first tick.
type FrameSource interface {
	NextFrame(tick uint64, dt float64, last Result) Frame
}

// FrameSourceFunc adapts a function into a FrameSource.
type FrameSourceFunc func(tick uint64, dt float64, last Result) Frame

func (f FrameSourceFunc) NextFrame(tick uint64, dt float64, last Result) Frame {
	if f == nil {
		return Frame{Tick: tick}
	}
	return f(tick, dt, last)
}

// LoopConfig tunes the fixed-timestep runner.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
}

// LoopHooks lets the host observe each step.
type LoopHooks struct {
	NextTick  func() uint64
	AfterStep func(LoopStepResult)
}

// LoopStepResult wraps a driver result with timing information.
type LoopStepResult struct {
	Result       Result
	Now          time.Time
	Delta        float64
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	MaxDelta     float64
}

// Loop runs the driver at a fixed rate and publishes each result to a
// SnapshotBuffer.
type Loop struct {
	driver *Driver
	source FrameSource
	buffer *SnapshotBuffer
	hooks  LoopHooks
	config LoopConfig

	tick   uint64
	last   Result
	streak uint64
}

func NewLoop(driver *Driver, source FrameSource, buffer *SnapshotBuffer, cfg LoopConfig, hooks LoopHooks) *Loop {
	if driver == nil {
		return nil
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 30
	}
	if source == nil {
		source = FrameSourceFunc(nil)
	}
	return &Loop{
		driver: driver,
		source: source,
		buffer: buffer,
		hooks:  hooks,
		config: cfg,
	}
}

func (l *Loop) Budget() time.Duration {
	return time.Second / time.Duration(l.config.TickRate)
}

// Advance runs a single tick outside the ticker.
func (l *Loop) Advance(ctx context.Context, tick uint64, now time.Time, dt float64) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	deps := l.driver.Deps()
	frame := l.source.NextFrame(tick, dt, l.last)
	frame.Tick = tick

	start := deps.Clock.Now()
	result := l.driver.Step(ctx, frame)
	elapsed := deps.Clock.Now().Sub(start)

	l.last = result
	l.buffer.Store(result)

	step := LoopStepResult{
		Result:   result,
		Now:      now,
		Delta:    dt,
		Duration: elapsed,
		Budget:   l.Budget(),
	}
	l.checkBudget(ctx, step)
	return step
}

func (l *Loop) checkBudget(ctx context.Context, step LoopStepResult) {
	if step.Budget <= 0 || step.Duration <= step.Budget {
		l.streak = 0
		return
	}
	l.streak++
	deps := l.driver.Deps()
	deps.Metrics.Add("sim.tick_budget_overrun", 1)
	simulation.TickBudgetOverrun(ctx, deps.Publisher, step.Result.Tick, simulation.TickBudgetOverrunPayload{
		DurationMillis: step.Duration.Milliseconds(),
		BudgetMillis:   step.Budget.Milliseconds(),
		Ratio:          float64(step.Duration) / float64(step.Budget),
		Streak:         l.streak,

		VisibilityMillis: step.Result.VisibilityDuration.Milliseconds(),
	}, nil)
}

// Run drives the fixed-timestep loop until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	if l == nil {
		return
	}
	budget := l.Budget()
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	deps := l.driver.Deps()
	clock := deps.Clock
	last := clock.Now()
	budgetSeconds := budget.Seconds()
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			var skipped uint64
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				skipped = uint64(math.Floor((dt - maxDt) / budgetSeconds))
				dt = maxDt
				clamped = true
			}
			last = now

			if l.hooks.NextTick != nil {
				l.tick = l.hooks.NextTick()
			} else {
				l.tick++
			}

			if skipped > 0 {
				deps.Metrics.Add("sim.ticks_skipped", skipped)
				simulation.TicksSkipped(ctx, deps.Publisher, l.tick, simulation.TicksSkippedPayload{Skipped: skipped}, nil)
			}

			step := l.Advance(ctx, l.tick, now, dt)
			step.ClampedDelta = clamped
			step.MaxDelta = maxDt

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(step)
			}
		}
	}
}
