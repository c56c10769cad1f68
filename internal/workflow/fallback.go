package workflow

import (
	"context"
	"strings"

	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/images"
)

// promptFallback substitutes a generic prompt for every slot the prompt
// stage could not fill. It always succeeds: missing prompts alone never fail
// an item.
func (o *Orchestrator) promptFallback(_ context.Context, item *queue.Item) error {
	count := item.Artifacts.NumImages
	if count < 1 {
		count = clipCount(item.Artifacts.AudioDuration, o.cfg.Video.ClipDurationSeconds)
		item.Artifacts.NumImages = count
	}
	if len(item.Artifacts.Prompts) != count {
		existing := item.Artifacts.Prompts
		item.Artifacts.Prompts = make([]string, count)
		copy(item.Artifacts.Prompts, existing)
	}
	for i, prompt := range item.Artifacts.Prompts {
		if prompt == "" {
			item.Artifacts.Prompts[i] = o.fallbackPrompt()
		}
	}
	return nil
}

// imageFallback writes a placeholder frame for every image slot still empty
// after retries. Only a failure to produce the placeholder itself fails the
// item.
func (o *Orchestrator) imageFallback(_ context.Context, item *queue.Item) error {
	count := len(item.Artifacts.Prompts)
	if count == 0 {
		count = item.Artifacts.NumImages
	}
	if count < 1 {
		count = 1
	}
	if len(item.Artifacts.ImagePaths) != count {
		existing := item.Artifacts.ImagePaths
		item.Artifacts.ImagePaths = make([]string, count)
		copy(item.Artifacts.ImagePaths, existing)
	}
	for i, path := range item.Artifacts.ImagePaths {
		if path != "" {
			continue
		}
		outputPath := o.imagePath(item.ScriptID, i)
		if err := images.WritePlaceholder(outputPath, o.cfg.Video.Width, o.cfg.Video.Height); err != nil {
			return err
		}
		item.Artifacts.ImagePaths[i] = outputPath
	}
	return nil
}

// fallbackPrompt draws a random prompt from the configured pool and appends
// the general fallback suffix.
func (o *Orchestrator) fallbackPrompt() string {
	var parts []string
	if pool := o.cfg.LLM.FallbackPrompts; len(pool) > 0 {
		parts = append(parts, pool[o.randInt(len(pool))])
	}
	if suffix := strings.TrimSpace(o.cfg.LLM.GeneralFallbackPrompt); suffix != "" {
		parts = append(parts, suffix)
	}
	if len(parts) == 0 {
		return "abstract cinematic background"
	}
	return strings.Join(parts, ", ")
}
