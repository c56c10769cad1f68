// Package stagepool executes a stage function over a batch of script items
// with bounded parallelism and per-item retry.
//
// Every input item produces exactly one Result, keyed by item identity; one
// item's failure never aborts the others. Stage functions may write artifacts
// on their item but must not touch its status.
package stagepool

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saadbenchakroun/auto-video-generator/internal/logging"
	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// StageFunc runs one phase's work for a single item.
type StageFunc func(ctx context.Context, item *queue.Item) error

// Result captures the outcome of a stage function for one item.
type Result struct {
	ItemID   int64
	Attempts int
	Err      error
}

// Pool bounds stage parallelism and applies the retry budget.
type Pool struct {
	workers    int
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customizes a Pool.
type Option func(*Pool)

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBackoff overrides the initial retry backoff.
func WithBackoff(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.backoff = d
		}
	}
}

// WithSleep replaces the blocking sleep, primarily for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pool) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// New returns a Pool with the given parallelism and per-item attempt budget.
// workers and maxRetries are clamped to at least 1.
func New(workers, maxRetries int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	p := &Pool{
		workers:    workers,
		maxRetries: maxRetries,
		backoff:    time.Second,
		logger:     logging.NewNop(),
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes fn for every item and returns one Result per item keyed by
// item ID. Errors from fn are retried up to the attempt budget with doubling
// backoff; the budget applies regardless of error class since the pool cannot
// reliably distinguish transient from permanent collaborator failures. Only
// context cancellation stops retrying early.
func (p *Pool) Run(ctx context.Context, items []*queue.Item, fn StageFunc) map[int64]Result {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]Result, len(items))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = p.runItem(groupCtx, item, fn)
			return nil
		})
	}
	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	keyed := make(map[int64]Result, len(results))
	for _, res := range results {
		keyed[res.ItemID] = res
	}
	return keyed
}

func (p *Pool) runItem(ctx context.Context, item *queue.Item, fn StageFunc) Result {
	itemCtx := services.WithItemID(ctx, item.ScriptID)
	logger := logging.WithContext(itemCtx, p.logger)

	res := Result{ItemID: item.ID}
	delay := p.backoff
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		res.Attempts = attempt
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		lastErr = fn(itemCtx, item)
		if lastErr == nil {
			return res
		}
		if ctx.Err() != nil {
			break
		}
		if attempt == p.maxRetries {
			break
		}
		logger.Warn("stage attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", p.maxRetries),
			logging.Bool("retriable", services.IsRetriable(lastErr)),
			logging.Error(lastErr),
		)
		if err := p.sleep(ctx, delay); err != nil {
			res.Err = lastErr
			return res
		}
		delay *= 2
	}
	res.Err = lastErr
	return res
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
