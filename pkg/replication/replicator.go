package replication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"hindinews/pkg/db"
	"hindinews/pkg/domain"
)

const (
	DefaultBatchSize = 100
	DefaultWorkers   = 5
)

// Config wires the replication dependencies.
type Config struct {
	Source db.Lister
	Target db.Store

	BatchSize int
	Workers   int
	Logger    *slog.Logger
}

// Result counts what a replication run did.
type Result struct {
	Processed int
	Inserted  int
	Skipped   int
}

// Replicator copies article records from one store into another, for
// example when moving from Mongo to Postgres.
//
// Records already present in the target (by source_url) are skipped; existing
// rows are never updated.
type Replicator struct {
	source    db.Lister
	target    db.Store
	batchSize int
	workers   int
	logger    *slog.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target store is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Replicator{
		source:    cfg.Source,
		target:    cfg.Target,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
		logger:    cfg.Logger.With("component", "replication"),
	}, nil
}

// Replicate reads all records from the source and inserts the missing ones
// into the target, in parallel batches. It stops at the first batch error.
func (r *Replicator) Replicate(ctx context.Context) (Result, error) {
	records, err := r.source.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read source: %w", err)
	}
	r.logger.Info("Loaded records from source, processing in batches...", "records", len(records))

	res, err := r.processBatches(ctx, records)
	if err != nil {
		return res, err
	}

	r.logger.Info("Replication complete", "processed", res.Processed, "inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}

type batchJob struct {
	batch []domain.ArticleRecord
	start int
	end   int
}

type batchResult struct {
	processed int
	inserted  int
	err       error
}

func (r *Replicator) processBatches(ctx context.Context, records []domain.ArticleRecord) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numBatches := (len(records) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(records); start += r.batchSize {
		end := min(start+r.batchSize, len(records))
		jobs <- batchJob{batch: records[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job)
				results <- batchResult{processed: len(job.batch), inserted: inserted, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var res Result
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				// remaining batches see a cancelled context and bail out
				cancel()
			}
			continue
		}
		res.Processed += result.processed
		res.Inserted += result.inserted
		res.Skipped += result.processed - result.inserted

		if res.Processed%1000 == 0 {
			r.logger.Info("Progress", "processed", res.Processed, "total", len(records), "inserted", res.Inserted)
		}
	}
	return res, firstErr
}

// processBatch inserts every record of the batch that the target lacks
func (r *Replicator) processBatch(ctx context.Context, job batchJob) (int, error) {
	r.logger.Debug("Processing batch", "start", job.start, "end", job.end)

	inserted := 0
	for _, rec := range job.batch {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		if rec.SourceURL == "" {
			continue
		}

		exists, err := r.target.Exists(ctx, rec.SourceURL)
		if err != nil {
			return inserted, fmt.Errorf("check batch [%d:%d]: %w", job.start, job.end, err)
		}
		if exists {
			continue
		}

		if err := r.target.Insert(ctx, rec); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				continue
			}
			return inserted, fmt.Errorf("insert batch [%d:%d] url=%q: %w", job.start, job.end, rec.SourceURL, err)
		}
		inserted++
	}
	return inserted, nil
}
