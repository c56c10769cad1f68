package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSheets(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeWhisper()
	c.normalizeLLM()
	c.normalizeImages()
	c.normalizeCaptions()
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FontsDir) != "" {
		if c.Paths.FontsDir, err = expandPath(c.Paths.FontsDir); err != nil {
			return fmt.Errorf("paths.fonts_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSheets() error {
	c.Sheets.CredentialsFile = strings.TrimSpace(c.Sheets.CredentialsFile)
	if c.Sheets.CredentialsFile == "" {
		if value, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
			c.Sheets.CredentialsFile = strings.TrimSpace(value)
		}
	}
	if c.Sheets.CredentialsFile != "" {
		expanded, err := expandPath(c.Sheets.CredentialsFile)
		if err != nil {
			return fmt.Errorf("sheets.credentials_file: %w", err)
		}
		c.Sheets.CredentialsFile = expanded
	}
	c.Sheets.SpreadsheetID = strings.TrimSpace(c.Sheets.SpreadsheetID)
	if c.Sheets.SpreadsheetID == "" {
		if value, ok := os.LookupEnv("AUTOVIDEO_SPREADSHEET_ID"); ok {
			c.Sheets.SpreadsheetID = strings.TrimSpace(value)
		}
	}
	c.Sheets.Worksheet = strings.TrimSpace(c.Sheets.Worksheet)
	if c.Sheets.Worksheet == "" {
		c.Sheets.Worksheet = defaultSheetsWorksheet
	}
	c.Sheets.IDColumn = strings.TrimSpace(c.Sheets.IDColumn)
	if c.Sheets.IDColumn == "" {
		c.Sheets.IDColumn = defaultSheetsIDColumn
	}
	c.Sheets.ScriptColumn = strings.TrimSpace(c.Sheets.ScriptColumn)
	if c.Sheets.ScriptColumn == "" {
		c.Sheets.ScriptColumn = defaultSheetsScriptColumn
	}
	c.Sheets.StatusColumn = strings.TrimSpace(c.Sheets.StatusColumn)
	if c.Sheets.StatusColumn == "" {
		c.Sheets.StatusColumn = defaultSheetsStatusColumn
	}
	c.Sheets.SearchKeyword = strings.TrimSpace(c.Sheets.SearchKeyword)
	if c.Sheets.SearchKeyword == "" {
		c.Sheets.SearchKeyword = defaultSheetsSearchKeyword
	}
	return nil
}

func (c *Config) normalizeTTS() {
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	if c.TTS.Voice == "" {
		c.TTS.Voice = defaultTTSVoice
	}
	if c.TTS.Speed <= 0 {
		c.TTS.Speed = defaultTTSSpeed
	}
	c.TTS.LangCode = strings.TrimSpace(c.TTS.LangCode)
	if c.TTS.LangCode == "" {
		c.TTS.LangCode = defaultTTSLangCode
	}
	if c.TTS.SampleRate <= 0 {
		c.TTS.SampleRate = defaultTTSSampleRate
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Device = strings.ToLower(strings.TrimSpace(c.Whisper.Device))
	if c.Whisper.Device == "" {
		c.Whisper.Device = defaultWhisperDevice
	}
	c.Whisper.ComputeType = strings.ToLower(strings.TrimSpace(c.Whisper.ComputeType))
	if c.Whisper.ComputeType == "" {
		c.Whisper.ComputeType = defaultWhisperComputeType
	}
	c.Whisper.Language = strings.TrimSpace(c.Whisper.Language)
	if c.Whisper.TimeoutSeconds <= 0 {
		c.Whisper.TimeoutSeconds = defaultWhisperTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("CEREBRAS_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	prompts := make([]string, 0, len(c.LLM.FallbackPrompts))
	for _, p := range c.LLM.FallbackPrompts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			prompts = append(prompts, trimmed)
		}
	}
	if len(prompts) == 0 {
		prompts = defaultFallbackPrompts()
	}
	c.LLM.FallbackPrompts = prompts
	c.LLM.GeneralFallbackPrompt = strings.TrimSpace(c.LLM.GeneralFallbackPrompt)
	if c.LLM.GeneralFallbackPrompt == "" {
		c.LLM.GeneralFallbackPrompt = defaultGeneralFallbackPrompt
	}
}

func (c *Config) normalizeImages() {
	c.Images.AccountID = strings.TrimSpace(c.Images.AccountID)
	if c.Images.AccountID == "" {
		if value, ok := os.LookupEnv("CLOUDFLARE_ACCOUNT_ID"); ok {
			c.Images.AccountID = strings.TrimSpace(value)
		}
	}
	c.Images.APIToken = strings.TrimSpace(c.Images.APIToken)
	if c.Images.APIToken == "" {
		if value, ok := os.LookupEnv("CLOUDFLARE_API_TOKEN"); ok {
			c.Images.APIToken = strings.TrimSpace(value)
		}
	}
	c.Images.Model = strings.TrimSpace(c.Images.Model)
	if c.Images.Model == "" {
		c.Images.Model = defaultImagesModel
	}
	if c.Images.Steps <= 0 {
		c.Images.Steps = defaultImagesSteps
	}
	c.Images.NegativePrompt = strings.TrimSpace(c.Images.NegativePrompt)
	if c.Images.NegativePrompt == "" {
		c.Images.NegativePrompt = defaultImagesNegativePrompt
	}
	if c.Images.RequestsPerMinute <= 0 {
		c.Images.RequestsPerMinute = defaultImagesPerMinute
	}
	if c.Images.TimeoutSeconds <= 0 {
		c.Images.TimeoutSeconds = defaultImagesTimeoutSeconds
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.Strategy = strings.ToLower(strings.TrimSpace(c.Captions.Strategy))
	if c.Captions.Strategy == "" {
		c.Captions.Strategy = defaultCaptionStrategy
	}
	if c.Captions.WordsPerGroup <= 0 {
		c.Captions.WordsPerGroup = defaultCaptionWordsPerGroup
	}
	if c.Captions.MaxGroupSeconds <= 0 {
		c.Captions.MaxGroupSeconds = defaultCaptionMaxSeconds
	}
	if c.Captions.MaxGroupChars <= 0 {
		c.Captions.MaxGroupChars = defaultCaptionMaxChars
	}
	if c.Captions.SmartMinWords <= 0 {
		c.Captions.SmartMinWords = defaultCaptionSmartMinWords
	}
	if c.Captions.SmartMaxWords <= 0 {
		c.Captions.SmartMaxWords = defaultCaptionSmartMaxWords
	}
	c.Captions.FontName = strings.TrimSpace(c.Captions.FontName)
	if c.Captions.FontName == "" {
		c.Captions.FontName = defaultCaptionFontName
	}
	if c.Captions.FontSize <= 0 {
		c.Captions.FontSize = defaultCaptionFontSize
	}
	c.Captions.PrimaryColour = strings.TrimSpace(c.Captions.PrimaryColour)
	if c.Captions.PrimaryColour == "" {
		c.Captions.PrimaryColour = defaultCaptionPrimaryColour
	}
	c.Captions.OutlineColour = strings.TrimSpace(c.Captions.OutlineColour)
	if c.Captions.OutlineColour == "" {
		c.Captions.OutlineColour = defaultCaptionOutlineColour
	}
	if c.Captions.OutlineWidth < 0 {
		c.Captions.OutlineWidth = defaultCaptionOutlineWidth
	}
	if c.Captions.MarginV < 0 {
		c.Captions.MarginV = defaultCaptionMarginV
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxItems <= 0 {
		c.Workflow.MaxItems = defaultWorkflowMaxItems
	}
	if c.Workflow.StageRetries <= 0 {
		c.Workflow.StageRetries = defaultStageRetries
	}
	if c.Workflow.AudioWorkers <= 0 {
		c.Workflow.AudioWorkers = defaultAudioWorkers
	}
	if c.Workflow.SubtitleWorkers <= 0 {
		c.Workflow.SubtitleWorkers = defaultSubtitleWorkers
	}
	if c.Workflow.PromptWorkers <= 0 {
		c.Workflow.PromptWorkers = defaultPromptWorkers
	}
	if c.Workflow.ImageWorkers <= 0 {
		c.Workflow.ImageWorkers = defaultImageWorkers
	}
	if c.Workflow.AssemblyWorkers <= 0 {
		c.Workflow.AssemblyWorkers = defaultAssemblyWorkers
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = 10
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
