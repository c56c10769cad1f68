package config

import (
	"errors"
	"fmt"
	"strings"
)

var validCaptionStrategies = map[string]struct{}{
	"fixed_words":  {},
	"time_based":   {},
	"char_count":   {},
	"smart_phrase": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSheets(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSheets() error {
	if !c.Sheets.Enabled {
		return nil
	}
	if c.Sheets.CredentialsFile == "" {
		return errors.New("sheets.credentials_file must be set when sheets.enabled is true (or set GOOGLE_APPLICATION_CREDENTIALS)")
	}
	if c.Sheets.SpreadsheetID == "" {
		return errors.New("sheets.spreadsheet_id must be set when sheets.enabled is true")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return errors.New("llm.base_url must be set")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must be set")
	}
	if len(c.LLM.FallbackPrompts) == 0 {
		return errors.New("llm.fallback_prompts must include at least one prompt")
	}
	return nil
}

func (c *Config) validateImages() error {
	if c.Images.Steps <= 0 {
		return errors.New("images.steps must be positive")
	}
	if c.Images.RequestsPerMinute <= 0 {
		return errors.New("images.requests_per_minute must be positive")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return errors.New("video.width and video.height must be positive")
	}
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	if c.Video.ClipDurationSeconds <= 0 {
		return errors.New("video.clip_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if _, ok := validCaptionStrategies[c.Captions.Strategy]; !ok {
		return fmt.Errorf("captions.strategy must be one of fixed_words, time_based, char_count, smart_phrase (got %q)", c.Captions.Strategy)
	}
	if c.Captions.SmartMaxWords < c.Captions.SmartMinWords {
		return errors.New("captions.smart_max_words must be >= captions.smart_min_words")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.max_items":        c.Workflow.MaxItems,
		"workflow.stage_retries":    c.Workflow.StageRetries,
		"workflow.audio_workers":    c.Workflow.AudioWorkers,
		"workflow.subtitle_workers": c.Workflow.SubtitleWorkers,
		"workflow.prompt_workers":   c.Workflow.PromptWorkers,
		"workflow.image_workers":    c.Workflow.ImageWorkers,
		"workflow.assembly_workers": c.Workflow.AssemblyWorkers,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
