package config

const (
	defaultDataDir               = "~/.local/share/autovideo"
	defaultTempDir               = "~/.local/share/autovideo/temp_assets"
	defaultOutputDir             = "~/autovideo/final_output"
	defaultLogDir                = "~/.local/share/autovideo/logs"
	defaultLogRetentionDays      = 60
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultSheetsWorksheet       = "Sheet1"
	defaultSheetsIDColumn        = "id"
	defaultSheetsScriptColumn    = "script"
	defaultSheetsStatusColumn    = "created"
	defaultSheetsSearchKeyword   = "Pending"
	defaultTTSVoice              = "af_heart"
	defaultTTSSpeed              = 1.0
	defaultTTSLangCode           = "a"
	defaultTTSSampleRate         = 24000
	defaultTTSTimeoutSeconds     = 600
	defaultWhisperModel          = "base.en"
	defaultWhisperDevice         = "cpu"
	defaultWhisperComputeType    = "int8"
	defaultWhisperTimeoutSeconds = 600
	defaultLLMBaseURL            = "https://api.cerebras.ai/v1"
	defaultLLMModel              = "llama3.1-70b"
	defaultLLMTimeoutSeconds     = 60
	defaultGeneralFallbackPrompt = "cinematic lighting, highly detailed, 4k"
	defaultImagesModel           = "@cf/stabilityai/stable-diffusion-xl-base-1.0"
	defaultImagesSteps           = 20
	defaultImagesNegativePrompt  = "blurry, low quality, distorted, watermark, text"
	defaultImagesPerMinute       = 100
	defaultImagesTimeoutSeconds  = 120
	defaultVideoWidth            = 1080
	defaultVideoHeight           = 1920
	defaultVideoFPS              = 30
	defaultClipDurationSeconds   = 4.0
	defaultCaptionStrategy       = "fixed_words"
	defaultCaptionWordsPerGroup  = 3
	defaultCaptionMaxSeconds     = 2.5
	defaultCaptionMaxChars       = 42
	defaultCaptionSmartMinWords  = 3
	defaultCaptionSmartMaxWords  = 5
	defaultCaptionFontName       = "Arial"
	defaultCaptionFontSize       = 52
	defaultCaptionPrimaryColour  = "&H00FFFFFF"
	defaultCaptionOutlineColour  = "&H00000000"
	defaultCaptionOutlineWidth   = 3
	defaultCaptionMarginV        = 80
	defaultWorkflowMaxItems      = 10
	defaultStageRetries          = 3
	defaultAudioWorkers          = 1
	defaultSubtitleWorkers       = 2
	defaultPromptWorkers         = 4
	defaultImageWorkers          = 4
	defaultAssemblyWorkers       = 2
)

func defaultFallbackPrompts() []string {
	return []string{
		"abstract flowing shapes",
		"misty mountain landscape at dawn",
		"city skyline at night with bokeh lights",
		"ocean waves crashing on a rocky shore",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			TempDir:   defaultTempDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Sheets: Sheets{
			Worksheet:     defaultSheetsWorksheet,
			IDColumn:      defaultSheetsIDColumn,
			ScriptColumn:  defaultSheetsScriptColumn,
			StatusColumn:  defaultSheetsStatusColumn,
			SearchKeyword: defaultSheetsSearchKeyword,
		},
		TTS: TTS{
			Voice:          defaultTTSVoice,
			Speed:          defaultTTSSpeed,
			LangCode:       defaultTTSLangCode,
			SampleRate:     defaultTTSSampleRate,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Whisper: Whisper{
			Model:          defaultWhisperModel,
			Device:         defaultWhisperDevice,
			ComputeType:    defaultWhisperComputeType,
			TimeoutSeconds: defaultWhisperTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:               defaultLLMBaseURL,
			Model:                 defaultLLMModel,
			TimeoutSeconds:        defaultLLMTimeoutSeconds,
			FallbackPrompts:       defaultFallbackPrompts(),
			GeneralFallbackPrompt: defaultGeneralFallbackPrompt,
		},
		Images: Images{
			Model:             defaultImagesModel,
			Steps:             defaultImagesSteps,
			NegativePrompt:    defaultImagesNegativePrompt,
			RequestsPerMinute: defaultImagesPerMinute,
			TimeoutSeconds:    defaultImagesTimeoutSeconds,
		},
		Video: Video{
			Width:               defaultVideoWidth,
			Height:              defaultVideoHeight,
			FPS:                 defaultVideoFPS,
			ClipDurationSeconds: defaultClipDurationSeconds,
		},
		Captions: Captions{
			Strategy:        defaultCaptionStrategy,
			WordsPerGroup:   defaultCaptionWordsPerGroup,
			MaxGroupSeconds: defaultCaptionMaxSeconds,
			MaxGroupChars:   defaultCaptionMaxChars,
			SmartMinWords:   defaultCaptionSmartMinWords,
			SmartMaxWords:   defaultCaptionSmartMaxWords,
			FontName:        defaultCaptionFontName,
			FontSize:        defaultCaptionFontSize,
			PrimaryColour:   defaultCaptionPrimaryColour,
			OutlineColour:   defaultCaptionOutlineColour,
			OutlineWidth:    defaultCaptionOutlineWidth,
			MarginV:         defaultCaptionMarginV,
		},
		Workflow: Workflow{
			MaxItems:        defaultWorkflowMaxItems,
			StageRetries:    defaultStageRetries,
			AudioWorkers:    defaultAudioWorkers,
			SubtitleWorkers: defaultSubtitleWorkers,
			PromptWorkers:   defaultPromptWorkers,
			ImageWorkers:    defaultImageWorkers,
			AssemblyWorkers: defaultAssemblyWorkers,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			RunStarted:     true,
			RunCompleted:   true,
			ItemFailures:   true,
			Errors:         true,
		},
	}
}
