package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})

	l.Info("record appended", FieldEmail, "a@b.c")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "email=a@b.c") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentWorker).Warn("slow")
	if !strings.Contains(buf.String(), "component=worker") {
		t.Fatalf("expected worker component, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := Nop().WithComponent(ComponentCLI)
	ctx := IntoContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatal("expected stored logger")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentStorage, Output: &buf}))
	sl.LogError(context.Background(), "save failed", errors.New("disk full"), OpAppend, nil)
	out := buf.String()
	for _, want := range []string{"level=ERROR", "error=\"disk full\"", "operation=append"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}
