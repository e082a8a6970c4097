package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"mech-arena/server/logging"
)

type jsonRecord struct {
	Type      logging.EventType   `json:"type"`
	Tick      uint64              `json:"tick"`
	Time      string              `json:"time"`
	Severity  string              `json:"severity"`
	Category  string              `json:"category,omitempty"`
	Actor     logging.EntityRef   `json:"actor"`
	Targets   []logging.EntityRef `json:"targets,omitempty"`
	Payload   any                 `json:"payload,omitempty"`
	Extra     map[string]any      `json:"extra,omitempty"`
	TraceID   string              `json:"traceId,omitempty"`
	CommandID string              `json:"commandId,omitempty"`
}

// JSON emits newline-delimited structured events. Output is flushed every
// MaxBatch events and on the flush interval; with no interval every event
// is flushed as written.
type JSON struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	encoder  *json.Encoder
	maxBatch int
	pending  int
	stop     chan struct{}
	stopOnce sync.Once
}

func NewJSON(w io.Writer, cfg logging.JSONConfig) *JSON {
	if w == nil {
		w = io.Discard
	}
	buf := bufio.NewWriter(w)
	sink := &JSON{writer: buf, encoder: json.NewEncoder(buf), maxBatch: cfg.MaxBatch, stop: make(chan struct{})}
	if cfg.FlushInterval <= 0 {
		sink.maxBatch = 1
	} else {
		go sink.periodicFlush(cfg.FlushInterval)
	}
	return sink
}

func (s *JSON) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := jsonRecord{
		Type:      event.Type,
		Tick:      event.Tick,
		Time:      event.Time.UTC().Format(time.RFC3339Nano),
		Severity:  event.Severity.String(),
		Category:  event.Category,
		Actor:     event.Actor,
		Targets:   event.Targets,
		Payload:   event.Payload,
		Extra:     event.Extra,
		TraceID:   event.TraceID,
		CommandID: event.CommandID,
	}
	if err := s.encoder.Encode(record); err != nil {
		return err
	}
	s.pending++
	if s.maxBatch > 0 && s.pending >= s.maxBatch {
		s.pending = 0
		return s.writer.Flush()
	}
	return nil
}

// Close stops the flush timer and flushes what is buffered.
func (s *JSON) Close(context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = 0
	return s.writer.Flush()
}

func (s *JSON) periodicFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.pending = 0
			s.writer.Flush()
			s.mu.Unlock()
		}
	}
}
