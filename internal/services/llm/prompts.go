package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/saadbenchakroun/auto-video-generator/internal/textutil"
)

// DefaultSystemPrompt is used when the configuration does not provide one.
const DefaultSystemPrompt = "You write prompts for the SDXL image model. " +
	"Given a narration segment, respond with JSON of the form " +
	`{"detailed_prompt": "..."} containing one vivid, concrete SDXL prompt ` +
	"describing a single scene that illustrates the segment. " +
	"No text overlays, no watermarks, vertical 9:16 composition."

// PromptGenerator turns a script into one SDXL prompt per planned clip.
type PromptGenerator struct {
	client       *Client
	systemPrompt string
	workers      int
}

// NewPromptGenerator wraps a client. workers bounds how many segments are in
// flight at once.
func NewPromptGenerator(client *Client, systemPrompt string, workers int) *PromptGenerator {
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if workers < 1 {
		workers = 1
	}
	return &PromptGenerator{client: client, systemPrompt: systemPrompt, workers: workers}
}

// Generate splits scriptText into count roughly equal segments and produces
// one prompt per segment, concurrently. The returned slice always has length
// count; entries for segments that failed are empty strings, and the joined
// error describes every failure. Callers decide whether empty slots are
// fatal or get substituted.
func (g *PromptGenerator) Generate(ctx context.Context, scriptText string, count int) ([]string, error) {
	scriptText = strings.TrimSpace(scriptText)
	if scriptText == "" {
		return nil, errors.New("prompt generate: script text required")
	}
	if count < 1 {
		count = 1
	}
	segments := splitSegments(scriptText, count)

	prompts := make([]string, count)
	errs := make([]error, count)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.workers)
	for i, segment := range segments {
		i, segment := i, segment
		group.Go(func() error {
			prompt, err := g.generateOne(groupCtx, segment)
			if err != nil {
				errs[i] = fmt.Errorf("segment %d: %w", i, err)
				return nil
			}
			prompts[i] = prompt
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return prompts, err
	}
	return prompts, errors.Join(errs...)
}

func (g *PromptGenerator) generateOne(ctx context.Context, segment string) (string, error) {
	userPrompt := fmt.Sprintf("Script segment: %q\n\nGenerate SDXL prompt:", segment)
	content, err := g.client.CompleteJSON(ctx, g.systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	var parsed struct {
		DetailedPrompt string `json:"detailed_prompt"`
	}
	if err := DecodeModelJSON(content, &parsed); err != nil {
		return "", fmt.Errorf("parse payload: %w", err)
	}
	prompt := strings.TrimSpace(parsed.DetailedPrompt)
	if prompt == "" {
		return "", errors.New("model returned no prompt")
	}
	return prompt, nil
}

// splitSegments divides text into exactly count segments. Very short scripts
// cannot be divided evenly; the whole text is reused for any segment that
// would otherwise come up empty so every planned clip still gets a prompt.
func splitSegments(text string, count int) []string {
	if count < 1 {
		count = 1
	}
	segments := textutil.Segments(text, count)
	for len(segments) < count {
		segments = append(segments, "")
	}
	for i, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			segments[i] = text
		}
	}
	return segments
}
