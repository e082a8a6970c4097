package net

import (
	"encoding/json"
	nethttp "net/http"
	"sort"
	"time"

	"mech-arena/server/internal/observability"
	"mech-arena/server/internal/sim"
	"mech-arena/server/internal/spatial"
	"mech-arena/server/internal/telemetry"
	"mech-arena/server/logging"
)

// StateSource is the read side of the tick loop.
type StateSource interface {
	Latest() (sim.Result, bool)
	Index() spatial.IndexDebugInfo
}

type HTTPHandlerConfig struct {
	Logger   telemetry.Logger
	Metrics  *logging.Metrics
	TickRate int
	// Feed serves /debug/feed when set.
	Feed          nethttp.Handler
	Observability observability.Config
}

type viewerSummary struct {
	ID           string  `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Computed     uint64  `json:"computed"`
	VisibleTiles int     `json:"visibleTiles"`
	Interior     int     `json:"interiorTiles"`
}

func NewHTTPHandler(state StateSource, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("GET /health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		result, _ := state.Latest()
		payload := struct {
			Status     string            `json:"status"`
			ServerTime int64             `json:"serverTime"`
			Tick       uint64            `json:"tick"`
			TickRate   int               `json:"tickRate"`
			StepMillis float64           `json:"stepMillis"`
			Viewers    int               `json:"viewers"`
			Telemetry  map[string]uint64 `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Tick:       result.Tick,
			TickRate:   cfg.TickRate,
			StepMillis: float64(result.Duration) / float64(time.Millisecond),
			Viewers:    len(result.Visibility),
			Telemetry:  cfg.Metrics.Snapshot(),
		}
		writeJSON(w, logger, payload)
	})

	mux.HandleFunc("GET /debug/index", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		result, _ := state.Latest()
		payload := struct {
			Tick  uint64                 `json:"tick"`
			Index spatial.IndexDebugInfo `json:"index"`
		}{
			Tick:  result.Tick,
			Index: state.Index(),
		}
		writeJSON(w, logger, payload)
	})

	mux.HandleFunc("GET /debug/viewers", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		result, _ := state.Latest()
		viewers := make([]viewerSummary, 0, len(result.Visibility))
		for id, snap := range result.Visibility {
			viewers = append(viewers, viewerSummary{
				ID:           id.String(),
				X:            snap.Position.X,
				Y:            snap.Position.Y,
				Computed:     snap.Tick,
				VisibleTiles: len(snap.Exterior),
				Interior:     len(snap.Interior),
			})
		}
		sort.Slice(viewers, func(i, j int) bool { return viewers[i].ID < viewers[j].ID })
		payload := struct {
			Tick    uint64          `json:"tick"`
			Viewers []viewerSummary `json:"viewers"`
		}{
			Tick:    result.Tick,
			Viewers: viewers,
		}
		writeJSON(w, logger, payload)
	})

	if cfg.Feed != nil {
		mux.Handle("GET /debug/feed", cfg.Feed)
	}
	if observability.Register(mux, cfg.Observability) {
		logger.Printf("pprof endpoints enabled under /debug/pprof/")
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, logger telemetry.Logger, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
