package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestSetupWriter(t *testing.T) {
	reset()

	var buf bytes.Buffer
	SetupWriter(&buf, "WARN", "json")
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}

	Get().Info("dropped")
	Get().Warn("kept", "channel_id", "C1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if out["level"] != "WARN" || out["msg"] != "kept" || out["channel_id"] != "C1" {
		t.Errorf("unexpected log line: %v", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "text")
	l.Info("hello", "alias", "slack-E1")

	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "alias=slack-E1") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	reset()

	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")
	WithComponent("resolver").Info("hello")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if out["component"] != "resolver" {
		t.Errorf("Expected component 'resolver', got %v", out["component"])
	}
}

func TestGetIsSafeAlongsideSetup(t *testing.T) {
	reset()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetupWriter(io.Discard, "error", "json")
		}()
		go func() {
			defer wg.Done()
			WithComponent("dispatch").Debug("concurrent")
		}()
	}
	wg.Wait()

	if Get() == nil {
		t.Fatal("Get returned nil after concurrent setup")
	}
}

func reset() {
	logger = nil
	once = sync.Once{}
}
