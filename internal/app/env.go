package app

import (
	"os"
	"strconv"
	"strings"

	"mech-arena/server/internal/config"
	"mech-arena/server/internal/telemetry"
)

// applyEnv overrides cfg from the process environment. Bad values are
// logged and ignored.
func applyEnv(cfg config.Config, lookup func(string) (string, bool), logger telemetry.Logger) config.Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if raw, ok := lookup("LISTEN_ADDR"); ok && strings.TrimSpace(raw) != "" {
		cfg.ListenAddr = strings.TrimSpace(raw)
	}
	if raw, ok := lookup("TICK_RATE"); ok {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TickRate = value
		} else {
			logger.Printf("invalid TICK_RATE=%q", raw)
		}
	}
	if raw, ok := lookup("VISION_UPDATE_TICKS"); ok {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Visibility.UpdateEveryTicks = value
		} else {
			logger.Printf("invalid VISION_UPDATE_TICKS=%q", raw)
		}
	}
	if raw, ok := lookup("VISION_MOVE_THRESHOLD"); ok {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 {
			cfg.Visibility.MoveThreshold = value
		} else {
			logger.Printf("invalid VISION_MOVE_THRESHOLD=%q", raw)
		}
	}
	if raw, ok := lookup("ENABLE_PPROF"); ok {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprof = value
		} else {
			logger.Printf("invalid ENABLE_PPROF=%q: %v", raw, err)
		}
	}
	return cfg.Normalized()
}
