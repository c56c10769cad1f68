package whisper_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/whisper"
)

const sampleTranscript = `{
  "segments": [
    {"words": [
      {"word": " The", "start": 0.0, "end": 0.2},
      {"word": " quiet", "start": 0.2, "end": 0.6},
      {"word": " harbor.", "start": 0.6, "end": 1.1}
    ]},
    {"words": [
      {"word": " Boats", "start": 1.4, "end": 1.8},
      {"word": " drift.", "start": 1.8, "end": 2.3}
    ]}
  ]
}`

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "item.wav")
	if err := os.WriteFile(path, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeParsesWordTimestamps(t *testing.T) {
	audioPath := writeAudioFile(t)
	outputDir := t.TempDir()
	trans := whisper.NewTranscriber(config.Default().Whisper, "faster-whisper")
	trans.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != "faster-whisper" {
			t.Fatalf("unexpected binary %q", name)
		}
		if args[0] != audioPath {
			t.Fatalf("expected audio path first, got %v", args)
		}
		return os.WriteFile(whisper.TranscriptPath(audioPath, outputDir), []byte(sampleTranscript), 0o644)
	})

	words, err := trans.Transcribe(context.Background(), audioPath, outputDir)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(words) != 5 {
		t.Fatalf("len(words) = %d, want 5", len(words))
	}
	if words[0].Text != "The" || words[0].Start != 0 || words[0].End != 0.2 {
		t.Fatalf("first word = %+v", words[0])
	}
	if words[4].Text != "drift." || words[4].End != 2.3 {
		t.Fatalf("last word = %+v", words[4])
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	trans := whisper.NewTranscriber(config.Default().Whisper, "")
	trans.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("runner should not be called")
		return nil
	})
	_, err := trans.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), "")
	if !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestTranscribeEmptyTranscript(t *testing.T) {
	audioPath := writeAudioFile(t)
	outputDir := t.TempDir()
	trans := whisper.NewTranscriber(config.Default().Whisper, "faster-whisper")
	trans.WithCommandRunner(func(context.Context, string, ...string) error {
		return os.WriteFile(whisper.TranscriptPath(audioPath, outputDir), []byte(`{"segments":[]}`), 0o644)
	})
	if _, err := trans.Transcribe(context.Background(), audioPath, outputDir); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranscribeToolFailure(t *testing.T) {
	audioPath := writeAudioFile(t)
	trans := whisper.NewTranscriber(config.Default().Whisper, "faster-whisper")
	trans.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 2")
	})
	if _, err := trans.Transcribe(context.Background(), audioPath, t.TempDir()); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
