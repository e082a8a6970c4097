package ws

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"

	"mech-arena/server/internal/net/intake"
	"mech-arena/server/internal/net/proto"
	"mech-arena/server/logging/network"
)

const (
	closeReasonClient      = "client_closed"
	closeReasonWriteFailed = "write_failed"
	closeReasonSource      = "source_closed"
	closeReasonShutdown    = "shutdown"
)

// session is one feed connection. The reader goroutine handles client
// messages; the serve goroutine writes frames. Writes are serialised by
// writeMu.
type session struct {
	conn   *websocket.Conn
	cfg    HandlerConfig
	remote string

	writeMu deadlock.Mutex

	stateMu  deadlock.Mutex
	viewer   uuid.UUID
	interval int
	encoding proto.Encoding
	frames   uint64
}

func newSession(conn *websocket.Conn, req intake.FeedRequest, cfg HandlerConfig) *session {
	return &session{
		conn:     conn,
		cfg:      cfg,
		remote:   conn.RemoteAddr().String(),
		viewer:   req.Viewer,
		interval: req.Interval,
		encoding: req.Encoding,
	}
}

func (s *session) state() (uuid.UUID, int, proto.Encoding) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.viewer, s.interval, s.encoding
}

func (s *session) serve(ctx context.Context, source Source) {
	defer s.conn.Close()

	viewer, _, _ := s.state()
	network.FeedOpened(ctx, s.cfg.Publisher, 0, network.FeedPayload{
		Viewer: viewer.String(),
		Remote: s.remote,
	}, nil)

	ticks, cancel := source.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go s.readLoop(done)

	reason := closeReasonShutdown
	var lastTick uint64
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-done:
			reason = closeReasonClient
			break loop
		case tick, ok := <-ticks:
			if !ok {
				reason = closeReasonSource
				break loop
			}
			lastTick = tick
			if !s.sendFrame(source, tick) {
				reason = closeReasonWriteFailed
				break loop
			}
		}
	}

	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		s.cfg.Clock.Now().Add(time.Second))
	s.writeMu.Unlock()

	viewer, _, _ = s.state()
	s.stateMu.Lock()
	frames := s.frames
	s.stateMu.Unlock()
	network.FeedClosed(context.WithoutCancel(ctx), s.cfg.Publisher, lastTick, network.FeedPayload{
		Viewer: viewer.String(),
		Remote: s.remote,
		Frames: frames,
		Reason: reason,
	}, nil)
}

// sendFrame writes the viewer's snapshot when tick falls on the session's
// cadence. It reports false only when the connection failed.
func (s *session) sendFrame(source Source, tick uint64) bool {
	viewer, interval, enc := s.state()
	if tick%uint64(interval) != 0 {
		return true
	}
	snap, ok := source.Viewer(viewer)
	if !ok {
		return true
	}
	data, err := proto.EncodeFeedFrame(proto.NewFeedFrame(tick, snap), enc)
	if err != nil {
		s.cfg.Logger.Printf("feed encode failed for %s: %v", viewer, err)
		return true
	}
	messageType := websocket.TextMessage
	if enc.Binary() {
		messageType = websocket.BinaryMessage
	}
	if err := s.write(messageType, data); err != nil {
		return false
	}
	s.stateMu.Lock()
	s.frames++
	s.stateMu.Unlock()
	return true
}

func (s *session) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(s.cfg.Clock.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

func (s *session) readLoop(done chan<- struct{}) {
	defer close(done)
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			s.cfg.Logger.Printf("discarding malformed feed message from %s: %v", s.remote, err)
			continue
		}

		var reply []byte
		switch msg.Type {
		case proto.TypeHeartbeat:
			now := s.cfg.Clock.Now().UnixMilli()
			rtt := int64(0)
			if msg.SentAt > 0 && msg.SentAt <= now {
				rtt = now - msg.SentAt
			}
			reply, err = proto.EncodeHeartbeat(proto.Heartbeat{ServerTime: now, ClientTime: msg.SentAt, RTTMillis: rtt})
		case proto.TypeCadence:
			if msg.Interval == nil {
				continue
			}
			applied := intake.ClampInterval(*msg.Interval)
			s.stateMu.Lock()
			s.interval = applied
			s.stateMu.Unlock()
			reply, err = proto.EncodeCadenceAck(proto.CadenceAck{Interval: applied})
		case proto.TypeFollow:
			id, perr := intake.ParseViewer(msg.Viewer)
			if perr != nil {
				reply, err = proto.EncodeError(proto.ErrorMessage{Reason: intake.RejectReason(perr)})
				break
			}
			s.stateMu.Lock()
			s.viewer = id
			s.stateMu.Unlock()
			continue
		default:
			s.cfg.Logger.Printf("unknown feed message type %q from %s", msg.Type, s.remote)
			continue
		}

		if err != nil {
			s.cfg.Logger.Printf("failed to marshal feed reply for %s: %v", s.remote, err)
			continue
		}
		if err := s.write(websocket.TextMessage, reply); err != nil {
			return
		}
	}
}
