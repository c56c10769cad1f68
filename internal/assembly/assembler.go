package assembly

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/fileutil"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// CommandRunner executes a command. Tests substitute this to avoid invoking
// real binaries.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// clipPosition selects which animation an image clip receives.
type clipPosition int

const (
	clipFirst clipPosition = iota
	clipMiddle
	clipLast
)

const fadeDuration = 1.0

// Assembler renders final videos from generated artifacts.
type Assembler struct {
	video    config.Video
	captions config.Captions
	binary   string
	fontsDir string
	tempDir  string
	output   string
	runner   CommandRunner
}

// New creates an assembler. tempDir holds intermediate clips; outputDir
// receives the final video and script copy.
func New(cfg *config.Config) *Assembler {
	return &Assembler{
		video:    cfg.Video,
		captions: cfg.Captions,
		binary:   cfg.FFmpegBinary(),
		fontsDir: cfg.Paths.FontsDir,
		tempDir:  cfg.Paths.TempDir,
		output:   cfg.Paths.OutputDir,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (a *Assembler) WithCommandRunner(runner CommandRunner) {
	a.runner = runner
}

// Input carries everything assembly needs for one item.
type Input struct {
	ItemID     string
	ImagePaths []string
	AudioPath  string
	SRTPath    string
	ScriptText string
}

// Output names the files assembly produced.
type Output struct {
	VideoPath  string
	ScriptPath string
}

// Assemble runs the full pipeline for one item and returns the final paths.
func (a *Assembler) Assemble(ctx context.Context, input Input) (Output, error) {
	var out Output
	if input.ItemID == "" {
		return out, services.Wrap(services.ErrPermanent, "assembly", "assemble", "item id required", nil)
	}
	if len(input.ImagePaths) == 0 {
		return out, services.Wrap(services.ErrPermanent, "assembly", "assemble", "no images to animate", nil)
	}
	for _, path := range append([]string{input.AudioPath, input.SRTPath}, input.ImagePaths...) {
		if !fileutil.FileExists(path) {
			return out, services.Wrap(services.ErrPermanent, "assembly", "assemble", fmt.Sprintf("missing input %s", path), nil)
		}
	}
	if err := fileutil.EnsureDir(a.tempDir); err != nil {
		return out, services.Wrap(services.ErrTransient, "assembly", "assemble", "ensure temp dir", err)
	}
	if err := fileutil.EnsureDir(a.output); err != nil {
		return out, services.Wrap(services.ErrTransient, "assembly", "assemble", "ensure output dir", err)
	}

	clipPaths := make([]string, 0, len(input.ImagePaths))
	for i, imagePath := range input.ImagePaths {
		clipPath := filepath.Join(a.tempDir, fmt.Sprintf("clip_%s_%d.mp4", input.ItemID, i))
		if err := a.animateClip(ctx, imagePath, clipPath, positionFor(i, len(input.ImagePaths))); err != nil {
			return out, err
		}
		clipPaths = append(clipPaths, clipPath)
	}

	stitchedPath := filepath.Join(a.tempDir, fmt.Sprintf("stitched_%s.mp4", input.ItemID))
	if err := a.stitch(ctx, input.ItemID, clipPaths, stitchedPath); err != nil {
		return out, err
	}

	voicedPath := filepath.Join(a.tempDir, fmt.Sprintf("pre_caption_%s.mp4", input.ItemID))
	if err := a.addVoice(ctx, stitchedPath, input.AudioPath, voicedPath); err != nil {
		return out, err
	}

	out.VideoPath = filepath.Join(a.output, fmt.Sprintf("video_%s.mp4", input.ItemID))
	if err := a.burnCaptions(ctx, voicedPath, input.SRTPath, out.VideoPath); err != nil {
		return Output{}, err
	}

	out.ScriptPath = filepath.Join(a.output, fmt.Sprintf("script_%s.txt", input.ItemID))
	if err := fileutil.WriteFileAtomic(out.ScriptPath, []byte(input.ScriptText)); err != nil {
		return Output{}, services.Wrap(services.ErrTransient, "assembly", "assemble", "write script copy", err)
	}
	return out, nil
}

// The sole clip of a one-image item counts as first, matching the opening
// zoom treatment.
func positionFor(index, total int) clipPosition {
	switch {
	case index == 0:
		return clipFirst
	case index == total-1:
		return clipLast
	default:
		return clipMiddle
	}
}

// animateClip renders a still image into a moving clip. The first clip zooms
// in, the last zooms out, middle clips only crossfade; every clip fades to
// black at its end so the stitch cuts cleanly.
func (a *Assembler) animateClip(ctx context.Context, imagePath, outputPath string, position clipPosition) error {
	duration := a.video.ClipDurationSeconds
	frames := int(duration * float64(a.video.FPS))
	if frames < 1 {
		frames = 1
	}
	size := fmt.Sprintf("%dx%d", a.video.Width, a.video.Height)

	var zoom string
	switch position {
	case clipFirst:
		zoom = fmt.Sprintf("1+0.25*on/%d", frames)
	case clipLast:
		zoom = fmt.Sprintf("1.25-0.25*on/%d", frames)
	default:
		zoom = "1"
	}

	filters := []string{
		// Oversample before zoompan to avoid the jitter it produces at
		// native resolution.
		fmt.Sprintf("scale=%d:-2", a.video.Width*4),
		fmt.Sprintf("zoompan=z='%s':d=%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%s:fps=%d",
			zoom, frames, size, a.video.FPS),
	}
	if position != clipFirst {
		filters = append(filters, fmt.Sprintf("fade=t=in:st=0:d=%g", fadeDuration))
	}
	fadeOutStart := duration - fadeDuration
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}
	filters = append(filters, fmt.Sprintf("fade=t=out:st=%g:d=%g", fadeOutStart, fadeDuration))

	args := []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-t", strconv.FormatFloat(duration, 'f', -1, 64),
		"-vf", strings.Join(filters, ","),
		"-r", strconv.Itoa(a.video.FPS),
		"-c:v", "libx264",
		"-crf", "23",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		outputPath,
	}
	if err := a.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembly", "animate", "render clip", err)
	}
	return nil
}

// stitch concatenates the clips with the concat demuxer and re-encodes for
// uniform timestamps.
func (a *Assembler) stitch(ctx context.Context, itemID string, clipPaths []string, outputPath string) error {
	listPath := filepath.Join(a.tempDir, fmt.Sprintf("concat_%s.txt", itemID))
	var b strings.Builder
	for _, clip := range clipPaths {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return services.Wrap(services.ErrPermanent, "assembly", "stitch", "resolve clip path", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "assembly", "stitch", "write concat list", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", "libx264",
		"-crf", "23",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		outputPath,
	}
	if err := a.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembly", "stitch", "concat clips", err)
	}
	return nil
}

// addVoice muxes the narration onto the stitched video. -shortest trims the
// video to the narration length, matching how clip counts are planned from
// the audio duration.
func (a *Assembler) addVoice(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}
	if err := a.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembly", "voice", "mux narration", err)
	}
	return nil
}

// burnCaptions renders the SRT cues into the video via the subtitles filter.
func (a *Assembler) burnCaptions(ctx context.Context, videoPath, srtPath, outputPath string) error {
	filter := fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(srtPath), a.captionStyle())
	if a.fontsDir != "" {
		filter = fmt.Sprintf("subtitles=%s:fontsdir=%s:force_style='%s'",
			escapeFilterPath(srtPath), escapeFilterPath(a.fontsDir), a.captionStyle())
	}
	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-crf", "23",
		"-preset", "medium",
		"-c:a", "copy",
		outputPath,
	}
	if err := a.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembly", "captions", "burn subtitles", err)
	}
	return nil
}

func (a *Assembler) captionStyle() string {
	parts := []string{
		"FontName=" + a.captions.FontName,
		"FontSize=" + strconv.Itoa(a.captions.FontSize),
		"PrimaryColour=" + a.captions.PrimaryColour,
		"OutlineColour=" + a.captions.OutlineColour,
		"Outline=" + strconv.Itoa(a.captions.OutlineWidth),
		"MarginV=" + strconv.Itoa(a.captions.MarginV),
	}
	return strings.Join(parts, ",")
}

// escapeFilterPath quotes a path for use inside an ffmpeg filter argument.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		":", `\:`,
		"'", `\'`,
	)
	return replacer.Replace(path)
}

func (a *Assembler) run(ctx context.Context, args ...string) error {
	if a.runner != nil {
		return a.runner(ctx, a.binary, args...)
	}
	cmd := exec.CommandContext(ctx, a.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", a.binary, err, tailLines(string(output), 8))
	}
	return nil
}

// tailLines keeps the last n lines of ffmpeg output, where the actual error
// lives.
func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
