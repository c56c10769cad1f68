// Package tts synthesizes narration audio by shelling out to the Kokoro TTS
// command line tool. The script text is handed over via a temp file so shell
// quoting never becomes a concern.
package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/fileutil"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// maxScriptLength bounds the text handed to the synthesizer in one call.
const maxScriptLength = 50000

// CommandRunner executes a command. Tests substitute this to avoid invoking
// real binaries.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Generator produces WAV narration files from script text.
type Generator struct {
	cfg    config.TTS
	binary string
	runner CommandRunner
}

// NewGenerator creates a generator from the TTS configuration section.
func NewGenerator(cfg config.TTS, binary string) *Generator {
	if binary == "" {
		binary = "kokoro-tts"
	}
	return &Generator{cfg: cfg, binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (g *Generator) WithCommandRunner(runner CommandRunner) {
	g.runner = runner
}

// Generate synthesizes text into a WAV file at outputPath. The parent
// directory is created if needed.
func (g *Generator) Generate(ctx context.Context, text, outputPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrPermanent, "tts", "generate", "script text required", nil)
	}
	if len(text) > maxScriptLength {
		return services.Wrap(services.ErrPermanent, "tts", "generate",
			fmt.Sprintf("script text exceeds %d characters", maxScriptLength), nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrPermanent, "tts", "generate", "output path required", nil)
	}
	if err := fileutil.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return services.Wrap(services.ErrTransient, "tts", "generate", "ensure output dir", err)
	}

	scriptFile, err := writeScriptFile(text)
	if err != nil {
		return services.Wrap(services.ErrTransient, "tts", "generate", "stage script text", err)
	}
	defer os.Remove(scriptFile)

	args := g.buildArgs(scriptFile, outputPath)

	runCtx := ctx
	if g.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(g.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	if err := g.run(runCtx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "tts", "generate", "run kokoro", err)
	}
	info, err := os.Stat(outputPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "tts", "generate", "synthesizer produced no output", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "tts", "generate", "synthesizer produced empty output", nil)
	}
	return nil
}

func (g *Generator) buildArgs(scriptFile, outputPath string) []string {
	args := []string{
		"--input", scriptFile,
		"--output", outputPath,
		"--voice", g.cfg.Voice,
		"--lang", g.cfg.LangCode,
	}
	if g.cfg.Speed > 0 {
		args = append(args, "--speed", strconv.FormatFloat(g.cfg.Speed, 'f', -1, 64))
	}
	if g.cfg.SampleRate > 0 {
		args = append(args, "--sample-rate", strconv.Itoa(g.cfg.SampleRate))
	}
	return args
}

func (g *Generator) run(ctx context.Context, args ...string) error {
	if g.runner != nil {
		return g.runner(ctx, g.binary, args...)
	}
	cmd := exec.CommandContext(ctx, g.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", g.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func writeScriptFile(text string) (string, error) {
	file, err := os.CreateTemp("", "autovideo-script-*.txt")
	if err != nil {
		return "", err
	}
	if _, err := file.WriteString(text); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}
