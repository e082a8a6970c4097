package ws

import (
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mech-arena/server/internal/net/intake"
	"mech-arena/server/internal/telemetry"
	"mech-arena/server/internal/visibility"
	"mech-arena/server/logging"
)

// Source is the read side of the tick driver the feed streams from.
type Source interface {
	Subscribe() (<-chan uint64, func())
	Viewer(id uuid.UUID) (visibility.Snapshot, bool)
}

type HandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Clock     logging.Clock
	// DefaultInterval is the number of ticks between frames when the client
	// does not ask for another cadence.
	DefaultInterval int
	WriteTimeout    time.Duration
}

// Handler upgrades feed requests and runs one session per connection.
type Handler struct {
	source   Source
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

func NewHandler(source Source, cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.ClockFunc(time.Now)
	}
	if cfg.DefaultInterval <= 0 {
		cfg.DefaultInterval = 3
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		source:   source,
		cfg:      cfg,
		upgrader: upgrader,
	}
}

// Handle validates the query before upgrading so bad requests get a plain
// HTTP error.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	req, err := intake.ParseFeedRequest(r.URL.Query(), h.cfg.DefaultInterval)
	if err != nil {
		nethttp.Error(w, intake.RejectReason(err), nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Printf("feed upgrade failed for %s: %v", req.Viewer, err)
		return
	}

	s := newSession(conn, req, h.cfg)
	s.serve(r.Context(), h.source)
}
