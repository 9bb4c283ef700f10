package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"hindinews/pkg/db"
	"hindinews/pkg/domain"
	"hindinews/pkg/feeds"
	"hindinews/pkg/filter"
	"hindinews/pkg/sources"
	"hindinews/pkg/worker"
)

// ErrCycleRunning is returned by Trigger while a cycle is in progress
var ErrCycleRunning = errors.New("cycle already running")

// Defaults for Config
const (
	DefaultMaxItems  = 15
	DefaultRetention = 48 * time.Hour
)

// State of the orchestrator: Idle, then Running, then CleaningUp during the
// retention sweep, then Idle again.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCleaningUp
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCleaningUp:
		return "cleaning_up"
	default:
		return "idle"
	}
}

// ItemProcessor handles one candidate
type ItemProcessor interface {
	Process(ctx context.Context, c domain.Candidate) (Outcome, error)
}

// Config controls one cycle
type Config struct {
	MaxItems    int           // candidates processed per cycle
	Retention   time.Duration // records older than this are swept
	Concurrency int           // per-item pipelines running at once
}

// Report summarizes a finished cycle. Inserted is the completion signal.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Fetched   int           `json:"fetched"`
	Unique    int           `json:"unique"`
	Queued    int           `json:"queued"`
	Skipped   int           `json:"skipped"`
	Inserted  int           `json:"inserted"`
	Failed    int           `json:"failed"`
	Deleted   int64         `json:"deleted"`
}

// Orchestrator runs cycles: fetch every source, dedup, cap, process through
// the worker pool, then sweep old records. At most one cycle runs at a time.
type Orchestrator struct {
	sources   []sources.Source
	fetcher   feeds.Fetcher
	processor ItemProcessor
	store     db.Store
	pool      *worker.Pool
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	state atomic.Int32

	mu   sync.RWMutex
	last *Report
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithClock replaces time.Now for the retention cutoff
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator wires the cycle. Sources are fetched in registry order.
func NewOrchestrator(cfg Config, registry *sources.Registry, fetcher feeds.Fetcher, processor ItemProcessor, store db.Store, logger *slog.Logger, opts ...Option) *Orchestrator {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}

	o := &Orchestrator{
		sources:   registry.Ordered(),
		fetcher:   fetcher,
		processor: processor,
		store:     store,
		pool:      worker.NewPool(cfg.Concurrency),
		cfg:       cfg,
		logger:    logger.With("component", "orchestrator"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State reports whether a cycle is running
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// LastReport returns the report of the most recent finished cycle
func (o *Orchestrator) LastReport() (Report, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return Report{}, false
	}
	return *o.last, true
}

// TryRun runs a cycle synchronously. It returns false without doing anything
// when another cycle is already running.
func (o *Orchestrator) TryRun(ctx context.Context) (Report, bool) {
	if !o.acquire() {
		o.logger.Info("cycle already running, ignoring trigger")
		return Report{}, false
	}
	defer o.release()
	return o.run(ctx), true
}

// Trigger starts a cycle in the background. The cycle outlives ctx's
// cancellation but keeps its values.
func (o *Orchestrator) Trigger(ctx context.Context) error {
	if !o.acquire() {
		return ErrCycleRunning
	}
	go func() {
		defer o.release()
		o.run(context.WithoutCancel(ctx))
	}()
	return nil
}

func (o *Orchestrator) acquire() bool {
	return o.state.CompareAndSwap(int32(StateIdle), int32(StateRunning))
}

func (o *Orchestrator) release() {
	o.state.Store(int32(StateIdle))
}

func (o *Orchestrator) run(ctx context.Context) Report {
	report := Report{StartedAt: o.now()}
	start := time.Now()
	o.logger.Info("cycle started", "sources", len(o.sources))

	all := o.fetchAll(ctx)
	report.Fetched = len(all)

	unique := filter.Apply(all, filter.NewHTTPURLFilter(), filter.NewBaseURLFilter(), filter.NewDedupFilter())
	report.Unique = len(unique)

	if len(unique) > o.cfg.MaxItems {
		o.logger.Debug("deferring candidates to a later cycle", "deferred", len(unique)-o.cfg.MaxItems)
		unique = unique[:o.cfg.MaxItems]
	}
	report.Queued = len(unique)

	o.processAll(ctx, unique, &report)

	o.state.Store(int32(StateCleaningUp))
	report.Deleted = o.sweep(ctx)
	report.Duration = time.Since(start)

	o.mu.Lock()
	o.last = &report
	o.mu.Unlock()

	o.logger.Info("cycle finished",
		"fetched", report.Fetched, "unique", report.Unique, "queued", report.Queued,
		"inserted", report.Inserted, "skipped", report.Skipped, "failed", report.Failed,
		"deleted", report.Deleted, "duration", report.Duration)
	return report
}

// fetchAll fetches every source concurrently and concatenates the results in
// source order, so dedup keeps the higher-priority copy.
func (o *Orchestrator) fetchAll(ctx context.Context) []domain.Candidate {
	results := make([][]domain.Candidate, len(o.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range o.sources {
		g.Go(func() error {
			results[i] = o.fetcher.Fetch(gctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.Candidate
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}

func (o *Orchestrator) processAll(ctx context.Context, candidates []domain.Candidate, report *Report) {
	futures := make([]*worker.Future[Outcome], len(candidates))
	for i, c := range candidates {
		futures[i] = worker.Submit(ctx, o.pool, func(ctx context.Context) (Outcome, error) {
			return o.processor.Process(ctx, c)
		})
	}

	for i, f := range futures {
		outcome, err := f.Wait(ctx)
		if err != nil {
			o.logger.Warn("item failed", "url", candidates[i].URL, "error", err)
		}
		switch outcome {
		case OutcomeInserted:
			report.Inserted++
		case OutcomeSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}
}

func (o *Orchestrator) sweep(ctx context.Context) int64 {
	cutoff := o.now().Add(-o.cfg.Retention)
	deleted, err := o.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		o.logger.Error("retention sweep failed", "error", err)
		return 0
	}
	if deleted > 0 {
		o.logger.Info("retention sweep", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted
}
