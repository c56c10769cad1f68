package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/saadbenchakroun/auto-video-generator/internal/assembly"
	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/whisper"
	"github.com/saadbenchakroun/auto-video-generator/internal/subtitles"
)

// AudioSynthesizer produces narration audio from script text.
type AudioSynthesizer interface {
	Generate(ctx context.Context, text, outputPath string) error
}

// DurationProber measures media duration in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Transcriber produces a word level transcript for narration audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) ([]whisper.Word, error)
}

// PromptSource produces one image prompt per planned clip. The returned
// slice always has length count; empty entries mark failed segments.
type PromptSource interface {
	Generate(ctx context.Context, scriptText string, count int) ([]string, error)
}

// ImageGenerator renders one prompt into an image file.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, outputPath string) error
}

// VideoAssembler builds the final video from the accumulated artifacts.
type VideoAssembler interface {
	Assemble(ctx context.Context, input assembly.Input) (assembly.Output, error)
}

// Stages bundles the collaborators each pipeline phase drives.
type Stages struct {
	TTS         AudioSynthesizer
	Prober      DurationProber
	Transcriber Transcriber
	Prompts     PromptSource
	Images      ImageGenerator
	Assembler   VideoAssembler
}

func (s Stages) validate() error {
	if s.TTS == nil || s.Prober == nil || s.Transcriber == nil ||
		s.Prompts == nil || s.Images == nil || s.Assembler == nil {
		return errors.New("workflow: all stage collaborators are required")
	}
	return nil
}

func (o *Orchestrator) audioStage(ctx context.Context, item *queue.Item) error {
	outputPath := filepath.Join(o.cfg.Paths.TempDir, fmt.Sprintf("audio_%s.wav", item.ScriptID))
	if err := o.stages.TTS.Generate(ctx, item.ScriptText, outputPath); err != nil {
		return err
	}
	duration, err := o.stages.Prober.Duration(ctx, outputPath)
	if err != nil {
		return err
	}
	if duration <= 0 {
		return services.Wrap(services.ErrPermanent, "workflow", "audio", "narration has zero duration", nil)
	}
	item.Artifacts.AudioPath = outputPath
	item.Artifacts.AudioDuration = duration
	return nil
}

func (o *Orchestrator) subtitleStage(ctx context.Context, item *queue.Item) error {
	words, err := o.stages.Transcriber.Transcribe(ctx, item.Artifacts.AudioPath, o.cfg.Paths.TempDir)
	if err != nil {
		return err
	}
	entries, err := subtitles.Group(words, o.cfg.Captions)
	if err != nil {
		return services.Wrap(services.ErrPermanent, "workflow", "subtitles", "group words", err)
	}
	if len(entries) == 0 {
		return services.Wrap(services.ErrPermanent, "workflow", "subtitles", "transcript produced no cues", nil)
	}
	if err := subtitles.Validate(entries); err != nil {
		return services.Wrap(services.ErrPermanent, "workflow", "subtitles", "validate cues", err)
	}
	srtPath := filepath.Join(o.cfg.Paths.TempDir, fmt.Sprintf("subs_%s.srt", item.ScriptID))
	if err := subtitles.WriteFile(srtPath, entries); err != nil {
		return services.Wrap(services.ErrTransient, "workflow", "subtitles", "write srt", err)
	}
	item.Artifacts.SRTPath = srtPath
	return nil
}

// promptsStage plans one clip per clip-duration slice of the narration and
// fills a prompt per clip. Earlier attempts' prompts are kept; only empty
// slots are regenerated on retry.
func (o *Orchestrator) promptsStage(ctx context.Context, item *queue.Item) error {
	count := clipCount(item.Artifacts.AudioDuration, o.cfg.Video.ClipDurationSeconds)
	item.Artifacts.NumImages = count
	if len(item.Artifacts.Prompts) != count {
		item.Artifacts.Prompts = make([]string, count)
	}

	generated, genErr := o.stages.Prompts.Generate(ctx, item.ScriptText, count)
	for i := 0; i < count && i < len(generated); i++ {
		if item.Artifacts.Prompts[i] == "" && generated[i] != "" {
			item.Artifacts.Prompts[i] = generated[i]
		}
	}
	missing := 0
	for _, prompt := range item.Artifacts.Prompts {
		if prompt == "" {
			missing++
		}
	}
	if missing > 0 {
		return services.Wrap(services.ErrTransient, "workflow", "prompts",
			fmt.Sprintf("%d of %d prompts missing", missing, count), genErr)
	}
	return nil
}

// imagesStage renders one image per prompt. Completed images survive retries
// so only the failed ones are reattempted.
func (o *Orchestrator) imagesStage(ctx context.Context, item *queue.Item) error {
	prompts := item.Artifacts.Prompts
	if len(prompts) == 0 {
		return services.Wrap(services.ErrPermanent, "workflow", "images", "no prompts available", nil)
	}
	if len(item.Artifacts.ImagePaths) != len(prompts) {
		item.Artifacts.ImagePaths = make([]string, len(prompts))
	}
	var errs []error
	for i, prompt := range prompts {
		if item.Artifacts.ImagePaths[i] != "" {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		outputPath := o.imagePath(item.ScriptID, i)
		if err := o.stages.Images.Generate(ctx, prompt, outputPath); err != nil {
			errs = append(errs, fmt.Errorf("image %d: %w", i, err))
			continue
		}
		item.Artifacts.ImagePaths[i] = outputPath
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) assemblyStage(ctx context.Context, item *queue.Item) error {
	out, err := o.stages.Assembler.Assemble(ctx, assembly.Input{
		ItemID:     item.ScriptID,
		ImagePaths: item.Artifacts.ImagePaths,
		AudioPath:  item.Artifacts.AudioPath,
		SRTPath:    item.Artifacts.SRTPath,
		ScriptText: item.ScriptText,
	})
	if err != nil {
		return err
	}
	item.Artifacts.VideoPath = out.VideoPath
	item.Artifacts.ScriptFile = out.ScriptPath
	return nil
}

func (o *Orchestrator) imagePath(scriptID string, index int) string {
	return filepath.Join(o.cfg.Paths.TempDir, fmt.Sprintf("img_%s_%d.png", scriptID, index))
}

// clipCount plans ceil(duration/clipDuration) clips, at least one.
func clipCount(audioDuration, clipDuration float64) int {
	if clipDuration <= 0 {
		clipDuration = 4.0
	}
	count := int(math.Ceil(audioDuration / clipDuration))
	if count < 1 {
		count = 1
	}
	return count
}
