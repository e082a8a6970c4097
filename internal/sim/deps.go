package sim

import (
	"time"

	"mech-arena/server/internal/telemetry"
	"mech-arena/server/logging"
)

// Deps carries shared infrastructure dependencies required by the driver.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	Clock     logging.Clock
}

func (d Deps) normalized() Deps {
	if d.Logger == nil {
		d.Logger = telemetry.LoggerFunc(nil)
	}
	if d.Metrics == nil {
		d.Metrics = telemetry.WrapMetrics(nil)
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	if d.Clock == nil {
		d.Clock = logging.ClockFunc(time.Now)
	}
	return d
}
