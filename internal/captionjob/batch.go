package captionjob

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"captionforge/internal/logging"
	"captionforge/internal/services"
)

// JobRunner runs a single job. *Orchestrator satisfies it.
type JobRunner interface {
	Run(ctx context.Context, job Job) (Result, error)
}

// BatchRunner runs jobs on a bounded worker pool.
type BatchRunner struct {
	runner  JobRunner
	workers int
	logger  *slog.Logger
}

// NewBatchRunner returns a runner with workers slots. A non-positive value
// uses one worker per CPU.
func NewBatchRunner(runner JobRunner, workers int, logger *slog.Logger) *BatchRunner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchRunner{
		runner:  runner,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "batch"),
	}
}

// Workers returns the pool size.
func (b *BatchRunner) Workers() int {
	return b.workers
}

// RunAll runs every job and returns results in input order. A failed job is
// reported on its own Result and never stops the others. Jobs that have not
// started when ctx is cancelled fail with the context error. Every job's log
// lines share the batch correlation id, generated unless ctx carries one.
func (b *BatchRunner) RunAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, "batch-"+uuid.NewString())
	}
	logger := logging.WithContext(ctx, b.logger)
	started := time.Now()
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("jobs", len(jobs)),
		logging.Int("workers", b.workers),
	)

	var group errgroup.Group
	group.SetLimit(b.workers)
	for i, job := range jobs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{
					JobID:     job.ID,
					Status:    StatusFailed,
					ErrorKind: "cancelled",
					Error:     err.Error(),
					Err:       err,
				}
				return nil
			}
			result, _ := b.runner.Run(ctx, job)
			results[i] = result
			return nil
		})
	}
	_ = group.Wait()

	summary := Summarize(results)
	logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("cache_hits", summary.CacheHits),
		logging.Duration("duration", time.Since(started)),
	)
	return results
}

// Summary counts batch outcomes.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	CacheHits int `json:"cache_hits"`
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	summary := Summary{Total: len(results)}
	for _, r := range results {
		if r.Succeeded() {
			summary.Succeeded++
			if r.CacheHit {
				summary.CacheHits++
			}
			continue
		}
		summary.Failed++
	}
	return summary
}
