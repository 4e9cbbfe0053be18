package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("session.created", map[string]any{"session_id": "s-1", "page": "home"})
	Error("llm.failed", map[string]any{"err": errors.New("boom")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["session_id"] != "s-1" || ctx["page"] != "home" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[1].Level)
	}
	if got := entries[1].ContextMap()["err"]; got != "boom" {
		t.Fatalf("expected err field boom, got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zapcore.Level
	}{
		{raw: "debug", want: zapcore.DebugLevel},
		{raw: " WARN ", want: zapcore.WarnLevel},
		{raw: "error", want: zapcore.ErrorLevel},
		{raw: "", want: zapcore.InfoLevel},
		{raw: "verbose", want: zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.raw); got != tt.want {
			t.Fatalf("parseLevel(%q) = %s want %s", tt.raw, got, tt.want)
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	if got := TruncateForLog("  abcdef  ", 3); got != "abc..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateForLog("abc", 10); got != "abc" {
		t.Fatalf("unexpected passthrough: %q", got)
	}
	if got := TruncateForLog("abc", 0); got != "" {
		t.Fatalf("expected empty for zero limit, got %q", got)
	}
}
