package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// CommandRunner executes a command and returns its combined stdout. Tests
// substitute this to avoid invoking real binaries.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober reads stream metadata via ffprobe.
type Prober struct {
	binary string
	runner CommandRunner
}

// NewProber creates a prober using the given ffprobe binary name.
func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// WithRunner sets a custom command runner (for testing).
func (p *Prober) WithRunner(runner CommandRunner) {
	p.runner = runner
}

// Duration returns the duration of the media file in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if strings.TrimSpace(path) == "" {
		return 0, services.Wrap(services.ErrPermanent, "media", "probe", "path required", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return 0, services.Wrap(services.ErrPermanent, "media", "probe", "stat input", err)
	}
	output, err := p.run(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "media", "probe", "run ffprobe", err)
	}
	duration, err := parseDuration(output)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "media", "probe", "parse ffprobe output", err)
	}
	return duration, nil
}

func (p *Prober) run(ctx context.Context, args ...string) ([]byte, error) {
	if p.runner != nil {
		return p.runner(ctx, p.binary, args...)
	}
	cmd := exec.CommandContext(ctx, p.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", p.binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func parseDuration(output []byte) (float64, error) {
	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	raw := strings.TrimSpace(payload.Format.Duration)
	if raw == "" {
		return 0, fmt.Errorf("no duration in output")
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %f", duration)
	}
	return duration, nil
}
