package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestStructuredLogger_Attributes(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo(&out, slog.LevelInfo).WithComponent("launcher").WithRequestID("req-1")

	l.LogError(context.Background(), "spawn failed", errors.New("boom"), "pid", 42)

	records := decodeLines(t, &out)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec["msg"] != "spawn failed" || rec["error"] != "boom" {
		t.Errorf("record = %v", rec)
	}
	if rec["component"] != "launcher" || rec["request_id"] != "req-1" {
		t.Errorf("record missing scope attributes: %v", rec)
	}
	if rec["pid"] != float64(42) {
		t.Errorf("pid = %v, want 42", rec["pid"])
	}
}

func TestWriter_SplitsLines(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo(&out, slog.LevelInfo)
	w := NewInfoWriter(l, "backend output", "stream", "stdout")

	_, _ = w.Write([]byte("first line\nsecond "))
	_, _ = w.Write([]byte("line\r\n\npartial"))

	records := decodeLines(t, &out)
	if len(records) != 2 {
		t.Fatalf("got %d records before flush, want 2", len(records))
	}
	if records[0]["line"] != "first line" || records[1]["line"] != "second line" {
		t.Errorf("lines = %v, %v", records[0]["line"], records[1]["line"])
	}
	if records[0]["stream"] != "stdout" {
		t.Errorf("stream = %v, want stdout", records[0]["stream"])
	}

	w.Flush()
	records = decodeLines(t, &out)
	if len(records) != 3 || records[2]["line"] != "partial" {
		t.Errorf("after flush records = %v", records)
	}
}

func TestWarningWriter_Level(t *testing.T) {
	var out bytes.Buffer
	w := NewWarningWriter(NewLoggerTo(&out, slog.LevelInfo), "backend output")
	_, _ = w.Write([]byte("traceback\n"))

	records := decodeLines(t, &out)
	if len(records) != 1 || records[0]["level"] != "WARN" {
		t.Errorf("records = %v", records)
	}
}
