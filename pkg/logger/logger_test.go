package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewRejectsUnknownEncoding(t *testing.T) {
	if _, err := New(Config{Level: "info", Encoding: "xml"}); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Level: "debug", Encoding: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithRequestID(ctx, base).Info("hello")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["request_id"] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", line["request_id"])
	}
	if _, ok := line["timestamp"]; !ok {
		t.Error("expected timestamp key")
	}
}

func TestWithRequestIDWithoutID(t *testing.T) {
	if RequestID(context.Background()) != "" {
		t.Error("expected empty request id")
	}
	if WithRequestID(context.Background(), nil) == nil {
		t.Error("expected nop logger for nil base")
	}
}
