package telemetry

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"mech-arena/server/logging"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})
}

func TestWrapMetrics(t *testing.T) {
	metrics := logging.Metrics{}
	adapter := WrapMetrics(&metrics)

	adapter.Add("test_counter", 2)
	adapter.Store("test_counter", 5)
	adapter.Add("test_counter", 3)

	snapshot := metrics.Snapshot()
	if got := snapshot["test_counter"]; got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}

	// Ensure nil metrics do not panic.
	var nilAdapter Metrics = WrapMetrics(nil)
	nilAdapter.Add("ignored", 1)
	nilAdapter.Store("ignored", 1)
}

func TestNewLogrusJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrus(LogSettings{Level: "debug", Format: "JSON", Output: &buf})
	Component(logger, "sim").Printf("tick %d", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "tick 3" || line["component"] != "sim" || line["level"] != "info" {
		t.Fatalf("unexpected fields %+v", line)
	}
}

func TestNewLogrusFallsBackToInfoText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrus(LogSettings{Level: "chatty", Output: &buf})
	logger.Debug("hidden")
	logger.Info("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
		t.Fatalf("unexpected text output %q", out)
	}
	Component(nil, "x").Printf("ignored")
}
