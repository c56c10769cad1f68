// Package whisper transcribes narration audio with word level timestamps by
// shelling out to a faster-whisper command line frontend. The tool writes a
// JSON transcript next to the audio file; this package parses it into the
// word list the subtitle grouper consumes.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// Word is a single transcribed word with its start and end offsets in
// seconds from the beginning of the audio.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// CommandRunner executes a command. Tests substitute this to avoid invoking
// real binaries.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Transcriber runs speech-to-text over narration audio.
type Transcriber struct {
	cfg    config.Whisper
	binary string
	runner CommandRunner
}

// NewTranscriber creates a transcriber from the whisper configuration section.
func NewTranscriber(cfg config.Whisper, binary string) *Transcriber {
	if binary == "" {
		binary = "faster-whisper"
	}
	return &Transcriber{cfg: cfg, binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Transcriber) WithCommandRunner(runner CommandRunner) {
	t.runner = runner
}

// Transcribe runs the model over audioPath and returns the transcript as an
// ordered word list. The tool's JSON output is written into outputDir.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, outputDir string) ([]Word, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrPermanent, "whisper", "transcribe", "audio path required", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, services.Wrap(services.ErrPermanent, "whisper", "transcribe", "stat audio", err)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "whisper", "transcribe", "ensure output dir", err)
	}

	args := t.buildArgs(audioPath, outputDir)

	runCtx := ctx
	if t.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(t.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	if err := t.run(runCtx, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "run faster-whisper", err)
	}

	transcriptPath := TranscriptPath(audioPath, outputDir)
	words, err := parseTranscript(transcriptPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "parse transcript", err)
	}
	if len(words) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "transcript contains no words", nil)
	}
	return words, nil
}

// TranscriptPath returns where the JSON transcript for audioPath lands.
func TranscriptPath(audioPath, outputDir string) string {
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, stem+".json")
}

func (t *Transcriber) buildArgs(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", t.cfg.Model,
		"--device", t.cfg.Device,
		"--compute_type", t.cfg.ComputeType,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if t.cfg.Language != "" {
		args = append(args, "--language", t.cfg.Language)
	}
	return args
}

func (t *Transcriber) run(ctx context.Context, args ...string) error {
	if t.runner != nil {
		return t.runner(ctx, t.binary, args...)
	}
	cmd := exec.CommandContext(ctx, t.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", t.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type transcriptFile struct {
	Segments []struct {
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words"`
	} `json:"segments"`
}

func parseTranscript(path string) ([]Word, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var transcript transcriptFile
	if err := json.Unmarshal(payload, &transcript); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	var words []Word
	for _, segment := range transcript.Segments {
		for _, w := range segment.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			words = append(words, Word{Text: text, Start: w.Start, End: w.End})
		}
	}
	return words, nil
}
