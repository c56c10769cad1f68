package assembly_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saadbenchakroun/auto-video-generator/internal/assembly"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
	"github.com/saadbenchakroun/auto-video-generator/internal/testsupport"
)

type runCall struct {
	name string
	args []string
}

func stageInputs(t *testing.T, imageCount int) assembly.Input {
	t.Helper()
	dir := t.TempDir()
	input := assembly.Input{
		ItemID:     "vid-1",
		AudioPath:  filepath.Join(dir, "audio.wav"),
		SRTPath:    filepath.Join(dir, "item.srt"),
		ScriptText: "a harbor wakes",
	}
	for i := 0; i < imageCount; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%d.png", i))
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			t.Fatalf("write image: %v", err)
		}
		input.ImagePaths = append(input.ImagePaths, path)
	}
	for _, path := range []string{input.AudioPath, input.SRTPath} {
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("write input: %v", err)
		}
	}
	return input
}

// recordingRunner records every invocation and creates the output file each
// command names in its final argument.
func recordingRunner(t *testing.T, calls *[]runCall) assembly.CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, runCall{name: name, args: args})
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
			t.Fatalf("create command output: %v", err)
		}
		return nil
	}
}

func argValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestAssembleRunsFullPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	asm := assembly.New(cfg)
	var calls []runCall
	asm.WithCommandRunner(recordingRunner(t, &calls))

	input := stageInputs(t, 3)
	out, err := asm.Assemble(context.Background(), input)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// 3 animate + stitch + voice + captions
	if len(calls) != 6 {
		t.Fatalf("command count = %d, want 6", len(calls))
	}

	firstFilter := argValue(calls[0].args, "-vf")
	if !strings.Contains(firstFilter, "zoompan") || !strings.Contains(firstFilter, "1+0.25*on") {
		t.Fatalf("first clip filter = %q, want zoom in", firstFilter)
	}
	if strings.Contains(firstFilter, "fade=t=in") {
		t.Fatalf("first clip should not fade in: %q", firstFilter)
	}
	middleFilter := argValue(calls[1].args, "-vf")
	if !strings.Contains(middleFilter, "fade=t=in") || !strings.Contains(middleFilter, "fade=t=out") {
		t.Fatalf("middle clip filter = %q, want fade in and out", middleFilter)
	}
	lastFilter := argValue(calls[2].args, "-vf")
	if !strings.Contains(lastFilter, "1.25-0.25*on") {
		t.Fatalf("last clip filter = %q, want zoom out", lastFilter)
	}

	stitch := calls[3].args
	if argValue(stitch, "-f") != "concat" {
		t.Fatalf("stitch args = %v, want concat demuxer", stitch)
	}

	voice := calls[4].args
	if !contains(voice, "-shortest") {
		t.Fatalf("voice args = %v, want -shortest", voice)
	}

	captions := argValue(calls[5].args, "-vf")
	if !strings.Contains(captions, "subtitles=") || !strings.Contains(captions, "force_style=") {
		t.Fatalf("caption filter = %q", captions)
	}
	if !strings.Contains(captions, "FontSize=") {
		t.Fatalf("caption filter missing style: %q", captions)
	}

	if filepath.Base(out.VideoPath) != "video_vid-1.mp4" {
		t.Fatalf("video path = %q", out.VideoPath)
	}
	script, err := os.ReadFile(out.ScriptPath)
	if err != nil {
		t.Fatalf("read script copy: %v", err)
	}
	if string(script) != "a harbor wakes" {
		t.Fatalf("script copy = %q", script)
	}
}

func TestAssembleSingleImageZoomsIn(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	asm := assembly.New(cfg)
	var calls []runCall
	asm.WithCommandRunner(recordingRunner(t, &calls))

	if _, err := asm.Assemble(context.Background(), stageInputs(t, 1)); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	filter := argValue(calls[0].args, "-vf")
	if !strings.Contains(filter, "1+0.25*on") {
		t.Fatalf("single clip filter = %q, want opening zoom", filter)
	}
}

func TestAssembleMissingInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	asm := assembly.New(cfg)
	asm.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("no command should run")
		return nil
	})

	input := stageInputs(t, 2)
	input.AudioPath = filepath.Join(t.TempDir(), "missing.wav")
	if _, err := asm.Assemble(context.Background(), input); !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}

	input = stageInputs(t, 2)
	input.ImagePaths = nil
	if _, err := asm.Assemble(context.Background(), input); !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("expected permanent error for no images, got %v", err)
	}
}

func TestAssembleStepFailureStopsPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	asm := assembly.New(cfg)
	count := 0
	asm.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		count++
		if count == 2 {
			return errors.New("exit status 1")
		}
		return os.WriteFile(args[len(args)-1], []byte("media"), 0o644)
	})

	_, err := asm.Assemble(context.Background(), stageInputs(t, 3))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if count != 2 {
		t.Fatalf("commands run = %d, want pipeline to stop at the failure", count)
	}
}

func contains(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}
