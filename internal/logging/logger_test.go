package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("phase started", String("stage", "audio"), Int("items", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Fatalf("missing level label: %q", line)
	}
	if !strings.Contains(line, "phase started") {
		t.Fatalf("missing message: %q", line)
	}
	if !strings.Contains(line, "stage=audio") || !strings.Contains(line, "items=3") {
		t.Fatalf("missing attrs: %q", line)
	}
}

func TestConsoleHandlerComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := NewComponentLogger(slog.New(newConsoleHandler(&buf, lvl)), "orchestrator")

	logger.Info("run complete")

	line := buf.String()
	if !strings.Contains(line, "orchestrator: run complete") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not render as attr: %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("suppressed")
	logger.Warn("emitted")

	if strings.Contains(buf.String(), "suppressed") {
		t.Fatal("info line should be filtered")
	}
	if !strings.Contains(buf.String(), "emitted") {
		t.Fatal("warn line missing")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	base := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithItemID(context.Background(), "clip-7")
	ctx = services.WithStage(ctx, "images")
	ctx = services.WithRunID(ctx, "run-abc")

	WithContext(ctx, base).Info("generation done")

	line := buf.String()
	for _, want := range []string{"item_id=clip-7", "stage=images", "run_id=run-abc"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
