package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", "info")
	l.Info("cache hit", "key", int64(42))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "cache hit" {
		t.Errorf("expected msg 'cache hit', got %v", rec["msg"])
	}
}

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", "")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("expected info records to be filtered")
	}
	if !strings.Contains(out, "shown") {
		t.Error("expected warn record in output")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("expected default logger for empty context")
	}

	l := Discard()
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected logger stored in context")
	}
}
