package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	TempDir   string `toml:"temp_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	FontsDir  string `toml:"fonts_dir"`
}

// Sheets contains configuration for the Google Sheets script store.
type Sheets struct {
	Enabled         bool   `toml:"enabled"`
	CredentialsFile string `toml:"credentials_file"`
	SpreadsheetID   string `toml:"spreadsheet_id"`
	Worksheet       string `toml:"worksheet"`
	IDColumn        string `toml:"id_column"`
	ScriptColumn    string `toml:"script_column"`
	StatusColumn    string `toml:"status_column"`
	SearchKeyword   string `toml:"search_keyword"`
}

// TTS contains configuration for Kokoro speech synthesis.
type TTS struct {
	Voice          string  `toml:"voice"`
	Speed          float64 `toml:"speed"`
	LangCode       string  `toml:"lang_code"`
	SampleRate     int     `toml:"sample_rate"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Whisper contains configuration for faster-whisper transcription.
type Whisper struct {
	Model          string `toml:"model"`
	Device         string `toml:"device"`
	ComputeType    string `toml:"compute_type"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains connection settings for the prompt-generation model.
type LLM struct {
	APIKey                string   `toml:"api_key"`
	BaseURL               string   `toml:"base_url"`
	Model                 string   `toml:"model"`
	SystemPrompt          string   `toml:"system_prompt"`
	TimeoutSeconds        int      `toml:"timeout_seconds"`
	FallbackPrompts       []string `toml:"fallback_prompts"`
	GeneralFallbackPrompt string   `toml:"general_fallback_prompt"`
}

// Images contains configuration for Cloudflare Workers AI image generation.
type Images struct {
	AccountID         string `toml:"account_id"`
	APIToken          string `toml:"api_token"`
	Model             string `toml:"model"`
	Steps             int    `toml:"steps"`
	NegativePrompt    string `toml:"negative_prompt"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// Video contains output geometry and clip timing.
type Video struct {
	Width               int     `toml:"width"`
	Height              int     `toml:"height"`
	FPS                 int     `toml:"fps"`
	ClipDurationSeconds float64 `toml:"clip_duration_seconds"`
}

// Captions contains subtitle grouping and burn styling.
type Captions struct {
	Strategy        string  `toml:"strategy"`
	WordsPerGroup   int     `toml:"words_per_group"`
	MaxGroupSeconds float64 `toml:"max_group_seconds"`
	MaxGroupChars   int     `toml:"max_group_chars"`
	SmartMinWords   int     `toml:"smart_min_words"`
	SmartMaxWords   int     `toml:"smart_max_words"`
	FontName        string  `toml:"font_name"`
	FontSize        int     `toml:"font_size"`
	PrimaryColour   string  `toml:"primary_colour"`
	OutlineColour   string  `toml:"outline_colour"`
	OutlineWidth    int     `toml:"outline_width"`
	MarginV         int     `toml:"margin_v"`
}

// Workflow contains per-phase worker counts and retry budgets.
type Workflow struct {
	MaxItems        int `toml:"max_items"`
	StageRetries    int `toml:"stage_retries"`
	AudioWorkers    int `toml:"audio_workers"`
	SubtitleWorkers int `toml:"subtitle_workers"`
	PromptWorkers   int `toml:"prompt_workers"`
	ImageWorkers    int `toml:"image_workers"`
	AssemblyWorkers int `toml:"assembly_workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunStarted     bool   `toml:"run_started"`
	RunCompleted   bool   `toml:"run_completed"`
	ItemFailures   bool   `toml:"item_failures"`
	Errors         bool   `toml:"errors"`
}

// Config encapsulates all configuration values for the generator.
//
// Configuration sections by subsystem:
//   - Paths: working, output, and state directories
//   - Sheets: Google Sheets script store (columns, pending keyword)
//   - TTS: Kokoro voice synthesis settings
//   - Whisper: faster-whisper transcription settings
//   - LLM: prompt-generation model connection and fallback pool
//   - Images: Cloudflare Workers AI image generation
//   - Video: output geometry, frame rate, clip timing
//   - Captions: subtitle grouping strategy and burn styling
//   - Workflow: per-phase worker counts and retry budgets
//   - Logging: log format, level, and retention
//   - Notifications: ntfy push notification settings
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sheets        Sheets        `toml:"sheets"`
	TTS           TTS           `toml:"tts"`
	Whisper       Whisper       `toml:"whisper"`
	LLM           LLM           `toml:"llm"`
	Images        Images        `toml:"images"`
	Video         Video         `toml:"video"`
	Captions      Captions      `toml:"captions"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/autovideo/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autovideo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.TempDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDatabasePath returns the location of the local queue database.
func (c *Config) QueueDatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "queue.db")
}

// RunLockPath returns the lock file guarding concurrent pipeline runs.
func (c *Config) RunLockPath() string {
	return filepath.Join(c.Paths.DataDir, "run.lock")
}

// FFmpegBinary returns the ffmpeg executable name used for assembly.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// KokoroBinary returns the Kokoro TTS executable name.
func (c *Config) KokoroBinary() string {
	return "kokoro-tts"
}

// WhisperBinary returns the faster-whisper executable name.
func (c *Config) WhisperBinary() string {
	return "faster-whisper"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
