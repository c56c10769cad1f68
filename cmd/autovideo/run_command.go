package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadbenchakroun/auto-video-generator/internal/assembly"
	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/deps"
	"github.com/saadbenchakroun/auto-video-generator/internal/logging"
	"github.com/saadbenchakroun/auto-video-generator/internal/media"
	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
	"github.com/saadbenchakroun/auto-video-generator/internal/ratelimit"
	"github.com/saadbenchakroun/auto-video-generator/internal/scriptstore"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/images"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/llm"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/tts"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/whisper"
	"github.com/saadbenchakroun/auto-video-generator/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipDepsCheck bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch pending scripts and produce videos for them",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if !skipDepsCheck {
				statuses := deps.CheckBinaries(deps.Requirements(cfg))
				if missing := deps.MissingRequired(statuses); len(missing) > 0 {
					return fmt.Errorf("missing required tools: %s (see `autovideo status`)", strings.Join(missing, ", "))
				}
			}

			runStamp := time.Now().UTC().Format("20060102T150405Z")
			logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("autovideo-%s.log", runStamp))
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout", logPath},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
				logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "autovideo-*.log", Exclude: []string{logPath}},
			)

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			scripts, err := buildScriptStore(cmd, cfg, store)
			if err != nil {
				return err
			}

			orchestrator, err := workflow.New(cfg, store, scripts, buildStages(cfg), workflow.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}

			summary, err := orchestrator.Run(signalCtx)
			if errors.Is(err, workflow.ErrRunInProgress) {
				return errors.New("another run is already in progress")
			}

			out := cmd.OutOrStdout()
			if summary.Fetched == 0 && err == nil {
				fmt.Fprintln(out, "No pending scripts found")
				return nil
			}
			fmt.Fprintf(out, "Run %s: %d fetched, %d produced, %d failed in %s\n",
				summary.RunID, summary.Fetched, summary.Done, summary.Failed, summary.Duration.Round(time.Second))
			return err
		},
	}

	cmd.Flags().BoolVar(&skipDepsCheck, "skip-deps-check", false, "Run even if external tools appear to be missing")
	return cmd
}

func buildScriptStore(cmd *cobra.Command, cfg *config.Config, store *queue.Store) (scriptstore.Store, error) {
	if cfg.Sheets.Enabled {
		sheets, err := scriptstore.NewSheetsStore(cmd.Context(), cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("connect to spreadsheet: %w", err)
		}
		return sheets, nil
	}
	return scriptstore.NewLocalStore(store), nil
}

func buildStages(cfg *config.Config) workflow.Stages {
	llmClient := llm.NewClient(cfg.LLM)
	imageLimiter := ratelimit.New(cfg.Images.RequestsPerMinute, time.Minute)

	return workflow.Stages{
		TTS:         tts.NewGenerator(cfg.TTS, cfg.KokoroBinary()),
		Prober:      media.NewProber(cfg.FFprobeBinary()),
		Transcriber: whisper.NewTranscriber(cfg.Whisper, cfg.WhisperBinary()),
		Prompts:     llm.NewPromptGenerator(llmClient, cfg.LLM.SystemPrompt, cfg.Workflow.PromptWorkers),
		Images:      images.NewClient(cfg.Images, cfg.Video.Width, cfg.Video.Height, imageLimiter),
		Assembler:   assembly.New(cfg),
	}
}
