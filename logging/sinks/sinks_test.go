package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mech-arena/server/logging"
)

func sampleEvent() logging.Event {
	return logging.Event{
		Type:     "spatial.projectile_hit",
		Tick:     7,
		Time:     time.Unix(100, 0).UTC(),
		Actor:    logging.EntityRef{ID: "p1", Kind: logging.EntityKindProjectile},
		Targets:  []logging.EntityRef{{ID: "s1", Kind: logging.EntityKindStructure}},
		Severity: logging.SeverityWarn,
		Category: "combat",
		Payload:  map[string]any{"damage": 5},
		Extra:    map[string]any{"region": "north"},
	}
}

func TestConsoleSinkFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{})
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	line := buf.String()
	for _, want := range []string{
		"[spatial.projectile_hit]",
		"tick=7",
		"actor=projectile:p1",
		"severity=warn",
		"targets=structure:s1",
		`payload={"damage":5}`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line %q missing %q", line, want)
		}
	}

	buf.Reset()
	colored := NewConsoleSink(&buf, logging.ConsoleConfig{UseColor: true})
	colored.Write(sampleEvent())
	if !strings.Contains(buf.String(), "\x1b[33mwarn\x1b[0m") {
		t.Fatalf("expected coloured severity, got %q", buf.String())
	}
}

func TestJSONSinkWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, logging.JSONConfig{})
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if decoded["type"] != "spatial.projectile_hit" || decoded["severity"] != "warn" {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
	if decoded["time"] != "1970-01-01T00:01:40Z" {
		t.Fatalf("unexpected time %v", decoded["time"])
	}
}

func TestJSONSinkBatchesUntilClose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, logging.JSONConfig{MaxBatch: 2, FlushInterval: time.Hour})
	sink.Write(sampleEvent())
	if buf.Len() != 0 {
		t.Fatalf("expected first event to stay buffered, got %q", buf.String())
	}
	sink.Write(sampleEvent())
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Fatalf("expected batch flush of 2 lines, got %d", got)
	}
	sink.Write(sampleEvent())
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Fatalf("expected close to flush the tail, got %d lines", got)
	}
}

func TestMemorySinkIsolatesEvents(t *testing.T) {
	sink := NewMemorySink()
	event := sampleEvent()
	sink.Write(event)
	event.Extra["region"] = "south"

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Extra["region"] != "north" {
		t.Fatalf("memory sink shares the extra map with the caller")
	}
	if got := len(sink.OfType("spatial.projectile_hit")); got != 1 {
		t.Fatalf("OfType returned %d events", got)
	}
	if got := len(sink.OfType("other")); got != 0 {
		t.Fatalf("OfType matched the wrong type: %d", got)
	}
	sink.Reset()
	if len(sink.Events()) != 0 {
		t.Fatalf("reset did not clear events")
	}
}

func TestZapSinkMapsSeverityAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewZap(zap.New(core))

	debug := sampleEvent()
	debug.Severity = logging.SeverityDebug
	sink.Write(debug)
	sink.Write(sampleEvent())

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected debug event to be filtered, got %d entries", len(entries))
	}
	entry := entries[0]
	if entry.Message != "spatial.projectile_hit" || entry.Level != zapcore.WarnLevel {
		t.Fatalf("unexpected entry %s at %s", entry.Message, entry.Level)
	}
	fields := entry.ContextMap()
	if fields["tick"] != uint64(7) {
		t.Fatalf("unexpected tick field %v", fields["tick"])
	}
	if fields["actor"] != "projectile:p1" || fields["category"] != "combat" {
		t.Fatalf("unexpected fields %+v", fields)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}
