package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	// Create a buffer to capture output
	var buf bytes.Buffer

	// Save original logger
	oldLogger := defaultLogger

	// Create a new logger that writes to the buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	// Execute function
	f()

	// Restore original logger
	defaultLogger = oldLogger

	return buf.String()
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{"debug json", LevelDebug, FormatJSON},
		{"info text", LevelInfo, FormatText},
		{"warn json", LevelWarn, FormatJSON},
		{"error text", LevelError, FormatText},
		{"unknown level", Level(99), FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			if GetLogger() == nil {
				t.Error("GetLogger() returned nil after InitLogger")
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	out := captureLogOutput(func() {
		Debug("debug message", "key", "value")
		Info("info message")
		Warn("warn message")
		Error("error message")
	})

	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestShardSkipped(t *testing.T) {
	out := captureLogOutput(func() {
		ShardSkipped(4, "shards/4.warc.wet.gz", errors.New("bad gzip"))
	})

	if !strings.Contains(out, "shard_skipped") {
		t.Error("output missing shard_skipped event")
	}
	if !strings.Contains(out, `"shard_id":4`) {
		t.Errorf("output missing shard_id field: %s", out)
	}
	if !strings.Contains(out, "bad gzip") {
		t.Error("output missing error detail")
	}
}

func TestRecordSkipped(t *testing.T) {
	out := captureLogOutput(func() {
		RecordSkipped(0, "rec-1", errors.New("not utf-8"), "extra", true)
	})

	if !strings.Contains(out, "record_skipped") {
		t.Error("output missing record_skipped event")
	}
	if !strings.Contains(out, `"record_id":"rec-1"`) {
		t.Errorf("output missing record_id field: %s", out)
	}
	if !strings.Contains(out, `"extra":true`) {
		t.Error("output missing extra args")
	}
}

func TestUnknownLabel(t *testing.T) {
	out := captureLogOutput(func() {
		UnknownLabel("xx")
	})

	if !strings.Contains(out, "unknown_label") || !strings.Contains(out, `"label":"xx"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRunSummary(t *testing.T) {
	out := captureLogOutput(func() {
		RunSummary(10, 2, 5, 1500*time.Millisecond)
	})

	if !strings.Contains(out, "run_summary") {
		t.Error("output missing run_summary event")
	}
	if !strings.Contains(out, `"skipped_shards":2`) {
		t.Errorf("output missing skipped_shards field: %s", out)
	}
	if !strings.Contains(out, `"duration_ms":1500`) {
		t.Errorf("output missing duration_ms field: %s", out)
	}
}
