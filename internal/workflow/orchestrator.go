package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/logging"
	"github.com/saadbenchakroun/auto-video-generator/internal/notifications"
	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
	"github.com/saadbenchakroun/auto-video-generator/internal/scriptstore"
	"github.com/saadbenchakroun/auto-video-generator/internal/stagepool"
)

// ErrRunInProgress reports that another run holds the workspace lock.
var ErrRunInProgress = errors.New("another run is already in progress")

// Orchestrator owns one batch run of the pipeline.
type Orchestrator struct {
	cfg      *config.Config
	store    *queue.Store
	scripts  scriptstore.Store
	stages   Stages
	notifier notifications.Service
	logger   *slog.Logger
	randInt  func(n int) int
	poolOpts []stagepool.Option
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNotifier overrides the notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(o *Orchestrator) {
		if notifier != nil {
			o.notifier = notifier
		}
	}
}

// WithRandInt replaces the random source used for fallback prompt selection
// (for deterministic tests).
func WithRandInt(randInt func(n int) int) Option {
	return func(o *Orchestrator) {
		if randInt != nil {
			o.randInt = randInt
		}
	}
}

// WithPoolOptions appends options to every stage pool (tests use this to
// skip retry backoff sleeps).
func WithPoolOptions(opts ...stagepool.Option) Option {
	return func(o *Orchestrator) {
		o.poolOpts = append(o.poolOpts, opts...)
	}
}

// New wires an orchestrator. All stage collaborators are required.
func New(cfg *config.Config, store *queue.Store, scripts scriptstore.Store, stages Stages, opts ...Option) (*Orchestrator, error) {
	if cfg == nil || store == nil || scripts == nil {
		return nil, errors.New("workflow: config, queue store, and script store are required")
	}
	if err := stages.validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		cfg:      cfg,
		store:    store,
		scripts:  scripts,
		stages:   stages,
		notifier: notifications.NewService(cfg.Notifications),
		logger:   logging.NewNop(),
		randInt:  rand.Intn,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Summary reports what a run accomplished.
type Summary struct {
	RunID    string
	Fetched  int
	Done     int
	Failed   int
	Duration time.Duration
}

type phaseSpec struct {
	phase    queue.Phase
	workers  int
	fn       stagepool.StageFunc
	fallback func(ctx context.Context, item *queue.Item) error
}

func (o *Orchestrator) phases() []phaseSpec {
	wf := o.cfg.Workflow
	return []phaseSpec{
		{queue.PhaseAudio, wf.AudioWorkers, o.audioStage, nil},
		{queue.PhaseSubtitles, wf.SubtitleWorkers, o.subtitleStage, nil},
		{queue.PhasePrompts, wf.PromptWorkers, o.promptsStage, o.promptFallback},
		{queue.PhaseImages, wf.ImageWorkers, o.imagesStage, o.imageFallback},
		{queue.PhaseAssembly, wf.AssemblyWorkers, o.assemblyStage, nil},
	}
}

// Run executes one batch: fetch pending scripts, mark them processing, drive
// the five phases over the live subset, then flush every item's terminal
// status back to the script store. Only orchestration faults (lock busy,
// store unreachable, cancellation) return an error; per-item failures are
// absorbed into the summary.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}

	lock := flock.New(o.cfg.RunLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return summary, ErrRunInProgress
	}
	defer func() { _ = lock.Unlock() }()

	log := o.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	pending, err := o.scripts.FetchPending(ctx, o.cfg.Workflow.MaxItems)
	if err != nil {
		return summary, fmt.Errorf("fetch pending scripts: %w", err)
	}
	if len(pending) == 0 {
		log.Info("no pending scripts")
		summary.Duration = time.Since(start)
		return summary, nil
	}
	log.Info("run started", logging.Int("pending", len(pending)))
	if err := o.notifier.NotifyRunStarted(ctx, len(pending)); err != nil {
		log.Warn("notify run started", logging.Error(err))
	}

	all, err := o.admitItems(ctx, pending)
	if err != nil {
		return summary, err
	}
	summary.Fetched = len(all)
	live := append([]*queue.Item(nil), all...)

	for _, spec := range o.phases() {
		if len(live) == 0 || ctx.Err() != nil {
			break
		}
		live = o.runPhase(ctx, log, spec, live)
	}

	if ctx.Err() == nil {
		for _, item := range live {
			if item.Transition(queue.StatusDone, "") {
				if err := o.store.Update(ctx, item); err != nil {
					log.Error("persist done status", logging.String("script_id", item.ScriptID), logging.Error(err))
				}
			}
		}
	}

	flushErr := o.flushTerminal(ctx, log, all, &summary)

	summary.Duration = time.Since(start)
	log.Info("run complete",
		logging.Int("done", summary.Done),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration))
	if err := o.notifier.NotifyRunCompleted(context.WithoutCancel(ctx), summary.Done, summary.Failed, summary.Duration); err != nil {
		log.Warn("notify run completed", logging.Error(err))
	}
	return summary, errors.Join(ctx.Err(), flushErr)
}

// admitItems registers each fetched script in the queue and checkpoints the
// processing transition to the script store. A store failure here aborts the
// run: without the checkpoint a crash would leave items invisible.
func (o *Orchestrator) admitItems(ctx context.Context, pending []scriptstore.PendingScript) ([]*queue.Item, error) {
	items := make([]*queue.Item, 0, len(pending))
	for _, script := range pending {
		item, err := o.ensureItem(ctx, script)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		if !item.Transition(queue.StatusProcessing, "") {
			continue
		}
		if err := o.store.Update(ctx, item); err != nil {
			return nil, fmt.Errorf("persist processing state: %w", err)
		}
		if err := o.scripts.PersistStatus(ctx, item.RowHandle, queue.StatusProcessing, nil); err != nil {
			return nil, fmt.Errorf("checkpoint processing status: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (o *Orchestrator) ensureItem(ctx context.Context, script scriptstore.PendingScript) (*queue.Item, error) {
	item, err := o.store.GetByScriptID(ctx, script.ID)
	if err != nil {
		return nil, fmt.Errorf("look up script %s: %w", script.ID, err)
	}
	if item == nil {
		item, err = o.store.Add(ctx, script.ID, script.Text)
		if err != nil {
			return nil, fmt.Errorf("enqueue script %s: %w", script.ID, err)
		}
	}
	if item.Status != queue.StatusPending {
		o.logger.Warn("skipping script not in pending state",
			logging.String("script_id", script.ID),
			logging.String("status", string(item.Status)))
		return nil, nil
	}
	item.RowHandle = script.RowHandle
	item.ScriptText = script.Text
	return item, nil
}

// runPhase drives one phase over the live subset and returns the survivors.
// An item whose stage error survives the fallback moves to the phase's
// terminal failed status.
func (o *Orchestrator) runPhase(ctx context.Context, log *slog.Logger, spec phaseSpec, live []*queue.Item) []*queue.Item {
	phaseLog := log.With(logging.String(logging.FieldStage, string(spec.phase)))
	phaseLog.Info("phase started", logging.Int("items", len(live)))

	opts := append([]stagepool.Option{stagepool.WithLogger(phaseLog)}, o.poolOpts...)
	pool := stagepool.New(spec.workers, o.cfg.Workflow.StageRetries, opts...)
	results := pool.Run(ctx, live, spec.fn)

	var next []*queue.Item
	for _, item := range live {
		res := results[item.ID]
		stageErr := res.Err
		if stageErr != nil && spec.fallback != nil && ctx.Err() == nil {
			if fbErr := spec.fallback(ctx, item); fbErr != nil {
				stageErr = fbErr
			} else {
				phaseLog.Warn("fallback applied",
					logging.String("script_id", item.ScriptID),
					logging.Error(stageErr))
				stageErr = nil
			}
		}
		if stageErr != nil {
			if ctx.Err() != nil {
				// The run was interrupted, not the item: the stage never got
				// a full attempt budget. Leave it processing so queue reset
				// can return it to pending instead of recording a bogus
				// terminal failure.
				continue
			}
			o.failItem(ctx, phaseLog, spec.phase, item, stageErr)
			continue
		}
		if err := o.store.Update(ctx, item); err != nil {
			phaseLog.Error("checkpoint artifacts", logging.String("script_id", item.ScriptID), logging.Error(err))
		}
		next = append(next, item)
	}
	phaseLog.Info("phase complete",
		logging.Int("succeeded", len(next)),
		logging.Int("failed", len(live)-len(next)))
	return next
}

func (o *Orchestrator) failItem(ctx context.Context, log *slog.Logger, phase queue.Phase, item *queue.Item, stageErr error) {
	status := queue.FailureStatus(phase)
	if !item.Transition(status, stageErr.Error()) {
		log.Error("invalid failure transition",
			logging.String("script_id", item.ScriptID),
			logging.String("from", string(item.Status)),
			logging.String("to", string(status)))
		return
	}
	if err := o.store.Update(context.WithoutCancel(ctx), item); err != nil {
		log.Error("persist failure status", logging.String("script_id", item.ScriptID), logging.Error(err))
	}
	log.Warn("item failed",
		logging.String("script_id", item.ScriptID),
		logging.String("status", string(status)),
		logging.Error(stageErr))
	if err := o.notifier.NotifyItemFailed(context.WithoutCancel(ctx), item.ScriptID, item.FailureReason); err != nil {
		log.Warn("notify item failed", logging.Error(err))
	}
}

// flushTerminal writes every terminal item's status back to the script
// store. The write is an idempotent overwrite, so re-running a flush after a
// partial failure is safe. Flush survives cancellation so finished work is
// never lost.
func (o *Orchestrator) flushTerminal(ctx context.Context, log *slog.Logger, items []*queue.Item, summary *Summary) error {
	flushCtx := context.WithoutCancel(ctx)
	var errs []error
	for _, item := range items {
		if !item.Status.IsTerminal() {
			continue
		}
		if item.Status == queue.StatusDone {
			summary.Done++
		} else {
			summary.Failed++
		}
		var extra map[string]string
		if item.FailureReason != "" {
			extra = map[string]string{scriptstore.ExtraFailureReason: item.FailureReason}
		}
		if err := o.scripts.PersistStatus(flushCtx, item.RowHandle, item.Status, extra); err != nil {
			log.Error("flush terminal status",
				logging.String("script_id", item.ScriptID),
				logging.String("status", string(item.Status)),
				logging.Error(err))
			errs = append(errs, fmt.Errorf("flush %s: %w", item.ScriptID, err))
		}
	}
	return errors.Join(errs...)
}
