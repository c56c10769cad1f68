package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "autovideo")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Sheets.Enabled {
		t.Fatal("expected sheets disabled by default")
	}
	if cfg.Sheets.SearchKeyword != "Pending" {
		t.Fatalf("unexpected search keyword: %q", cfg.Sheets.SearchKeyword)
	}
	if cfg.TTS.Voice != "af_heart" {
		t.Fatalf("unexpected TTS voice: %q", cfg.TTS.Voice)
	}
	if cfg.LLM.BaseURL != config.Default().LLM.BaseURL {
		t.Fatalf("unexpected LLM base url: %q", cfg.LLM.BaseURL)
	}
	if len(cfg.LLM.FallbackPrompts) == 0 {
		t.Fatal("expected default fallback prompts")
	}
	if cfg.Images.RequestsPerMinute != 100 {
		t.Fatalf("unexpected image rate limit: %d", cfg.Images.RequestsPerMinute)
	}
	if cfg.Video.Width != 1080 || cfg.Video.Height != 1920 {
		t.Fatalf("unexpected video geometry: %dx%d", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Captions.Strategy != "fixed_words" {
		t.Fatalf("unexpected caption strategy: %q", cfg.Captions.Strategy)
	}
	if cfg.Workflow.AudioWorkers != 1 {
		t.Fatalf("unexpected audio workers: %d", cfg.Workflow.AudioWorkers)
	}
	if cfg.QueueDatabasePath() != filepath.Join(wantData, "queue.db") {
		t.Fatalf("unexpected queue db path: %q", cfg.QueueDatabasePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.TempDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "autovideo.toml")

	type payload struct {
		LLM struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"llm"`
		Video struct {
			FPS                 int     `toml:"fps"`
			ClipDurationSeconds float64 `toml:"clip_duration_seconds"`
		} `toml:"video"`
		Workflow struct {
			ImageWorkers int `toml:"image_workers"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.LLM.APIKey = "abc123"
	custom.LLM.Model = "llama-4-scout"
	custom.Video.FPS = 24
	custom.Video.ClipDurationSeconds = 5.5
	custom.Workflow.ImageWorkers = 8
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.LLM.APIKey != "abc123" {
		t.Fatalf("expected LLM key from file, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "llama-4-scout" {
		t.Fatalf("expected model override, got %q", cfg.LLM.Model)
	}
	if cfg.Video.FPS != 24 {
		t.Fatalf("expected fps 24, got %d", cfg.Video.FPS)
	}
	if cfg.Video.ClipDurationSeconds != 5.5 {
		t.Fatalf("expected clip duration 5.5, got %v", cfg.Video.ClipDurationSeconds)
	}
	if cfg.Workflow.ImageWorkers != 8 {
		t.Fatalf("expected 8 image workers, got %d", cfg.Workflow.ImageWorkers)
	}
	// Untouched sections keep defaults.
	if cfg.Whisper.Model != "base.en" {
		t.Fatalf("expected default whisper model, got %q", cfg.Whisper.Model)
	}
}

func TestEnvVarFallbacksForSecrets(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CEREBRAS_API_KEY", "env-cerebras")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "env-account")
	t.Setenv("CLOUDFLARE_API_TOKEN", "env-token")
	t.Setenv("NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-cerebras" {
		t.Errorf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Images.AccountID != "env-account" {
		t.Errorf("expected account id from env, got %q", cfg.Images.AccountID)
	}
	if cfg.Images.APIToken != "env-token" {
		t.Errorf("expected api token from env, got %q", cfg.Images.APIToken)
	}
	if cfg.Notifications.NtfyTopic != "env-topic" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_spreadsheet_id_here") {
		t.Fatalf("sample config missing placeholder spreadsheet id: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Video.FPS != 30 {
		t.Fatalf("expected sample fps 30, got %d", cfg.Video.FPS)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Sheets.Enabled = true
	cfg.Sheets.CredentialsFile = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when sheets enabled without credentials")
	}

	cfg = config.Default()
	cfg.Captions.Strategy = "karaoke"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown caption strategy")
	}

	cfg = config.Default()
	cfg.Video.FPS = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero fps")
	}

	cfg = config.Default()
	cfg.Workflow.ImageWorkers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero image workers")
	}

	cfg = config.Default()
	cfg.Captions.SmartMinWords = 4
	cfg.Captions.SmartMaxWords = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when smart max < smart min")
	}
}
