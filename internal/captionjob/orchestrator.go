package captionjob

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"captionforge/internal/captions"
	"captionforge/internal/fonts"
	"captionforge/internal/logging"
	"captionforge/internal/media/ffprobe"
	"captionforge/internal/resultcache"
	"captionforge/internal/services"
	"captionforge/internal/services/ffmpeg"
)

// Downloader stages the source video locally.
type Downloader interface {
	Download(ctx context.Context, ref, destDir string) (string, error)
}

// SubtitleFetcher retrieves remote subtitle payloads.
type SubtitleFetcher interface {
	FetchText(ctx context.Context, ref string) (string, error)
}

// Renderer burns subtitles into a video.
type Renderer interface {
	Render(ctx context.Context, req ffmpeg.Request, progress ffmpeg.ProgressFunc) error
}

// Prober inspects the source before rendering.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Probe, error)
}

// Uploader publishes the rendered artifact.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// FontCatalog validates and resolves requested fonts.
type FontCatalog interface {
	captions.FontAllowList
	Resolve(requested, fallback string) fonts.Resolution
}

// ProgressReporter observes job transitions and render progress. Percent is
// -1 outside the rendering stage or when the frame total is unknown.
type ProgressReporter interface {
	JobProgress(jobID string, status Status, percent float64)
}

// Dependencies are the collaborators an Orchestrator drives.
type Dependencies struct {
	Fonts      FontCatalog
	Cache      resultcache.Store
	Downloader Downloader
	Subtitles  SubtitleFetcher
	Renderer   Renderer
	Prober     Prober
	Uploader   Uploader
	Reporter   ProgressReporter
	Logger     *slog.Logger
}

// Settings hold the non-collaborator knobs.
type Settings struct {
	StagingDir  string
	DefaultFont string
	VideoCodec  string
	// RenderTimeout bounds a single render; zero means unlimited.
	RenderTimeout time.Duration
}

// Orchestrator runs single caption jobs. It is safe for concurrent use.
type Orchestrator struct {
	settings Settings
	deps     Dependencies
	logger   *slog.Logger
	inflight singleflight.Group
	now      func() time.Time
}

// NewOrchestrator validates the wiring and returns an Orchestrator.
func NewOrchestrator(settings Settings, deps Dependencies) (*Orchestrator, error) {
	var missing []string
	if deps.Fonts == nil {
		missing = append(missing, "fonts")
	}
	if deps.Downloader == nil {
		missing = append(missing, "downloader")
	}
	if deps.Subtitles == nil {
		missing = append(missing, "subtitle fetcher")
	}
	if deps.Renderer == nil {
		missing = append(missing, "renderer")
	}
	if deps.Prober == nil {
		missing = append(missing, "prober")
	}
	if deps.Uploader == nil {
		missing = append(missing, "uploader")
	}
	if strings.TrimSpace(settings.StagingDir) == "" {
		missing = append(missing, "staging directory")
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrConfiguration, "orchestrator", "init", "missing "+strings.Join(missing, ", "), nil)
	}
	if deps.Cache == nil {
		deps.Cache = resultcache.Nop{}
	}
	if strings.TrimSpace(settings.DefaultFont) == "" {
		settings.DefaultFont = captions.DefaultFontName
	}
	return &Orchestrator{
		settings: settings,
		deps:     deps,
		logger:   logging.NewComponentLogger(deps.Logger, "orchestrator"),
		now:      time.Now,
	}, nil
}

// Run executes job and returns its result. The returned error equals
// Result.Err; validation failures happen before any collaborator is called.
func (o *Orchestrator) Run(ctx context.Context, job Job) (Result, error) {
	started := o.now()
	if strings.TrimSpace(job.ID) == "" {
		job.ID = uuid.NewString()
	}
	job.ID = strings.TrimSpace(job.ID)
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, o.logger)

	result := Result{JobID: job.ID, Status: StatusQueued}
	o.report(&result, StatusQueued, -1)

	err := o.run(ctx, logger, job, &result)
	result.Duration = o.now().Sub(started)
	if err != nil {
		result.fail(err)
		result.ErrorKind = services.Classify(err)
		o.report(&result, StatusFailed, -1)
		logging.ErrorWithContext(logger, "caption job failed", "job_failed",
			logging.String(logging.FieldFingerprint, result.Fingerprint),
			logging.String("error_kind", result.ErrorKind),
			logging.String(logging.FieldErrorHint, errorHint(result.ErrorKind)),
			logging.Error(err),
		)
		return result, err
	}

	result.Status = StatusDone
	o.report(&result, StatusDone, -1)
	logger.Info("caption job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String(logging.FieldFingerprint, result.Fingerprint),
		logging.String("output_ref", result.OutputRef),
		logging.Bool("cache_hit", result.CacheHit),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, logger *slog.Logger, job Job, result *Result) error {
	p, err := o.buildPlan(job)
	if err != nil {
		return err
	}
	result.Fingerprint = p.fingerprint
	o.report(result, StatusFingerprinted, -1)

	if entry, ok := o.lookup(ctx, logger, p.fingerprint); ok {
		result.OutputRef = entry.OutputRef
		result.CacheHit = true
		logger.Info("cache hit",
			logging.String(logging.FieldEventType, "cache_hit"),
			logging.String(logging.FieldFingerprint, p.fingerprint),
			logging.String("cached_job_id", entry.JobID),
		)
		return nil
	}

	// Concurrent jobs with one fingerprint share a single pipeline run.
	executed := false
	value, err, _ := o.inflight.Do(p.fingerprint, func() (any, error) {
		executed = true
		if entry, ok := o.lookup(ctx, logger, p.fingerprint); ok {
			result.CacheHit = true
			return entry.OutputRef, nil
		}
		return o.execute(ctx, logger, p, result)
	})
	if err != nil {
		return err
	}
	result.OutputRef, _ = value.(string)
	if !executed {
		result.CacheHit = true
		logger.Info("joined in-flight render",
			logging.String(logging.FieldEventType, "render_coalesced"),
			logging.String(logging.FieldFingerprint, p.fingerprint),
		)
	}
	return nil
}

// lookup reads the cache. Read failures degrade to a miss.
func (o *Orchestrator) lookup(ctx context.Context, logger *slog.Logger, fp string) (resultcache.Entry, bool) {
	entry, ok, err := o.deps.Cache.Get(ctx, fp)
	if err != nil {
		logging.WarnWithContext(logger, "cache lookup failed; continuing without cache", "cache_read_failed",
			logging.String(logging.FieldFingerprint, fp),
			logging.String(logging.FieldErrorHint, "check cache directory permissions or run `captionforge cache purge`"),
			logging.String(logging.FieldImpact, "job renders even if a cached result exists"),
			logging.Error(err),
		)
		return resultcache.Entry{}, false
	}
	if !ok || strings.TrimSpace(entry.OutputRef) == "" {
		return resultcache.Entry{}, false
	}
	return entry, true
}

func (o *Orchestrator) report(result *Result, status Status, percent float64) {
	result.Status = status
	if o.deps.Reporter != nil {
		o.deps.Reporter.JobProgress(result.JobID, status, percent)
	}
}

func errorHint(kind string) string {
	switch kind {
	case "validation":
		return "fix the job options or subtitle payload and resubmit"
	case "retrieval":
		return "check that the source and subtitle references are reachable"
	case "render":
		return "inspect the ffmpeg stderr in the log for filter or codec errors"
	case "storage":
		return "check storage credentials and bucket permissions"
	case "configuration":
		return "run `captionforge check` to verify configuration"
	default:
		return "check logs for details"
	}
}

// ensureMarker tags err with marker unless it already carries one of the
// taxonomy sentinels.
func ensureMarker(marker error, stage, operation string, err error) error {
	if err == nil {
		return nil
	}
	if services.Classify(err) != "unknown" {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(marker, stage, operation, "cancelled", err)
	}
	return services.Wrap(marker, stage, operation, "", err)
}

func validationError(operation, message string, err error) error {
	return services.Wrap(services.ErrValidation, "validation", operation, message, err)
}
