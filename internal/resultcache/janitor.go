package resultcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"captionforge/internal/logging"
)

// Janitor purges expired entries on a cron schedule.
type Janitor struct {
	store    Store
	schedule cron.Schedule
	expr     string
	cron     *cron.Cron
	group    singleflight.Group
	logger   *slog.Logger
}

// NewJanitor parses a standard cron expression (descriptors such as @daily are
// accepted) and prepares a janitor for store.
func NewJanitor(store Store, expr string, logger *slog.Logger) (*Janitor, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", expr, err)
	}
	return &Janitor{
		store:    store,
		schedule: schedule,
		expr:     expr,
		cron:     cron.New(),
		logger:   logging.NewComponentLogger(logger, "cache-janitor"),
	}, nil
}

// Next returns the next scheduled purge after ref.
func (j *Janitor) Next(ref time.Time) time.Time {
	return j.schedule.Next(ref)
}

// RunOnce purges expired entries. Overlapping calls share a single purge.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	v, err, _ := j.group.Do("purge", func() (any, error) {
		return j.store.Purge(ctx, false)
	})
	if err != nil {
		logging.WarnWithContext(j.logger, "cache purge failed", "cache_purge_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache directory permissions"),
			logging.String(logging.FieldImpact, "expired entries remain until the next run"))
		return 0, err
	}
	removed := v.(int)
	j.logger.Info("cache purge complete",
		logging.String(logging.FieldEventType, "cache_purged"),
		logging.Int("removed", removed))
	return removed, nil
}

// Run schedules purges until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) error {
	j.cron.Schedule(j.schedule, cron.FuncJob(func() {
		_, _ = j.RunOnce(ctx)
	}))
	j.cron.Start()
	j.logger.Info("cache janitor started",
		logging.String("schedule", j.expr),
		logging.String("next_run", j.Next(time.Now()).Format(time.RFC3339)))

	<-ctx.Done()
	stopped := j.cron.Stop()
	<-stopped.Done()
	j.logger.Info("cache janitor stopped")
	return nil
}
