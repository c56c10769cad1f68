package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/saadbenchakroun/auto-video-generator/internal/media"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

func writeTempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestProberDurationParsesOutput(t *testing.T) {
	path := writeTempFile(t)
	prober := media.NewProber("ffprobe")
	var gotArgs []string
	prober.WithRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "ffprobe" {
			t.Fatalf("unexpected binary %q", name)
		}
		gotArgs = args
		return []byte(`{"format":{"duration":"12.480000"}}`), nil
	})

	duration, err := prober.Duration(context.Background(), path)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if duration != 12.48 {
		t.Fatalf("duration = %v, want 12.48", duration)
	}
	if len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != path {
		t.Fatalf("expected path as final arg, got %v", gotArgs)
	}
}

func TestProberDurationMissingFile(t *testing.T) {
	prober := media.NewProber("")
	prober.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("runner should not be called for missing file")
		return nil, nil
	})
	if _, err := prober.Duration(context.Background(), filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, services.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestProberDurationBadOutput(t *testing.T) {
	path := writeTempFile(t)
	prober := media.NewProber("ffprobe")

	for name, output := range map[string]string{
		"empty duration": `{"format":{}}`,
		"not a number":   `{"format":{"duration":"n/a"}}`,
		"invalid json":   `not json`,
	} {
		prober.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
			return []byte(output), nil
		})
		if _, err := prober.Duration(context.Background(), path); !errors.Is(err, services.ErrExternalTool) {
			t.Fatalf("%s: expected external tool error, got %v", name, err)
		}
	}
}

func TestProberDurationRunnerFailure(t *testing.T) {
	path := writeTempFile(t)
	prober := media.NewProber("ffprobe")
	prober.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})
	if _, err := prober.Duration(context.Background(), path); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
