package captionjob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"captionforge/internal/captions"
	"captionforge/internal/fingerprint"
	"captionforge/internal/logging"
	"captionforge/internal/resultcache"
	"captionforge/internal/services"
	"captionforge/internal/services/ffmpeg"
	"captionforge/internal/services/fetch"
	"captionforge/internal/subtitles"
)

// plan is a validated job ready to execute.
type plan struct {
	job         Job
	dialect     captions.Dialect
	options     captions.Options
	fingerprint string
}

var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

var outputContainers = map[string]struct{}{
	".mp4":  {},
	".m4v":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
}

// buildPlan validates job without touching any collaborator.
func (o *Orchestrator) buildPlan(job Job) (plan, error) {
	if !jobIDPattern.MatchString(job.ID) {
		return plan{}, validationError("job", fmt.Sprintf("invalid job id %q", job.ID), nil)
	}
	if strings.TrimSpace(job.SourceRef) == "" {
		return plan{}, validationError("job", "source reference required", nil)
	}
	if strings.TrimSpace(job.Subtitles) == "" {
		return plan{}, validationError("job", "subtitle payload required", nil)
	}
	dialect, err := captions.ParseDialect(job.Dialect)
	if err != nil {
		return plan{}, validationError("dialect", "", err)
	}
	opts := captions.FromPairs(job.Options)
	if err := captions.Validate(opts, o.deps.Fonts); err != nil {
		return plan{}, err
	}
	fp, err := fingerprint.Compute(fingerprint.Input{
		SourceRef:       strings.TrimSpace(job.SourceRef),
		SubtitlePayload: job.Subtitles,
		Dialect:         dialect,
		Options:         opts,
	})
	if err != nil {
		return plan{}, validationError("fingerprint", "", err)
	}
	return plan{job: job, dialect: dialect, options: opts, fingerprint: fp}, nil
}

// execute runs the cache-miss path and returns the uploaded reference. Each
// run stages into its own directory, so jobs sharing an ID never touch each
// other's files.
func (o *Orchestrator) execute(ctx context.Context, logger *slog.Logger, p plan, result *Result) (any, error) {
	if err := os.MkdirAll(o.settings.StagingDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "staging", "mkdir", o.settings.StagingDir, err)
	}
	jobDir, err := os.MkdirTemp(o.settings.StagingDir, p.job.ID+"-")
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "staging", "mkdir", o.settings.StagingDir, err)
	}
	defer o.cleanup(logger, jobDir)

	o.report(result, StatusDownloading, -1)
	downloadCtx := services.WithStage(ctx, string(StatusDownloading))
	sourcePath, err := o.deps.Downloader.Download(downloadCtx, p.job.SourceRef, jobDir)
	if err != nil {
		return nil, ensureMarker(services.ErrRetrieval, "download", "source", err)
	}
	logger.Debug("source staged", logging.String("source_path", sourcePath))

	subtitlePath, spec, err := o.prepareSubtitles(ctx, logger, p, jobDir)
	if err != nil {
		return nil, err
	}
	o.report(result, StatusSubtitlePrepared, -1)

	filter, err := captions.FilterExpression(spec, subtitlePath)
	if err != nil {
		return nil, validationError("filter", "", err)
	}

	outputPath := filepath.Join(jobDir, p.job.ID+"-captioned"+outputExtension(sourcePath))
	if err := o.render(ctx, logger, result, sourcePath, outputPath, filter); err != nil {
		return nil, err
	}

	o.report(result, StatusUploading, -1)
	uploadCtx := services.WithStage(ctx, string(StatusUploading))
	ref, err := o.deps.Uploader.Upload(uploadCtx, outputPath)
	if err != nil {
		return nil, ensureMarker(services.ErrStorage, "upload", "artifact", err)
	}

	entry := resultcache.Entry{
		Fingerprint: p.fingerprint,
		OutputRef:   ref,
		JobID:       p.job.ID,
		CreatedAt:   o.now().UTC(),
	}
	if err := o.deps.Cache.Put(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "cache write failed; result not cached", "cache_write_failed",
			logging.String(logging.FieldFingerprint, p.fingerprint),
			logging.String(logging.FieldErrorHint, "check cache directory permissions"),
			logging.String(logging.FieldImpact, "an identical job will render again"),
			logging.Error(err),
		)
	} else {
		o.report(result, StatusCached, -1)
	}
	return ref, nil
}

// prepareSubtitles resolves the font, compiles the style, and writes the
// subtitle document into jobDir.
func (o *Orchestrator) prepareSubtitles(ctx context.Context, logger *slog.Logger, p plan, jobDir string) (string, captions.StyleSpec, error) {
	payload := p.job.Subtitles
	if fetch.IsRemote(payload) {
		text, err := o.deps.Subtitles.FetchText(services.WithStage(ctx, "subtitle_fetch"), strings.TrimSpace(payload))
		if err != nil {
			return "", captions.StyleSpec{}, ensureMarker(services.ErrRetrieval, "subtitle", "fetch", err)
		}
		payload = text
	}

	opts := p.options
	resolution := o.deps.Fonts.Resolve(opts.FontName(), o.settings.DefaultFont)
	if resolution.Fallback {
		logging.WarnWithContext(logger, "requested font unavailable; using default family", "font_fallback",
			logging.String("requested_font", resolution.Requested),
			logging.String("fallback_font", resolution.Name),
			logging.String(logging.FieldErrorHint, "install the font into the fonts directory"),
			logging.String(logging.FieldImpact, "captions render with the default family"),
		)
		opts = opts.With(captions.KeyFontName, resolution.Name)
	}

	spec := captions.Compile(opts, p.dialect)
	prepared, err := subtitles.Prepare(payload, spec)
	if err != nil {
		return "", captions.StyleSpec{}, validationError("subtitles", "", err)
	}
	if prepared.Stats.DroppedCues > 0 {
		logger.Debug("dropped cues without words",
			logging.Int("dropped_cues", prepared.Stats.DroppedCues),
			logging.Int("input_cues", prepared.Stats.InputCues),
		)
	}

	path := filepath.Join(jobDir, p.job.ID+p.dialect.Extension())
	if err := os.WriteFile(path, prepared.Content, 0o644); err != nil {
		return "", captions.StyleSpec{}, services.Wrap(services.ErrStorage, "staging", "write subtitles", path, err)
	}
	logger.Info("subtitles prepared",
		logging.String(logging.FieldEventType, "subtitles_prepared"),
		logging.String("dialect", p.dialect.String()),
		logging.String("input_format", string(prepared.InputFormat)),
		logging.Int("cues", prepared.Stats.OutputCues),
		logging.Duration("first_cue", prepared.Start),
		logging.Duration("last_cue_end", prepared.End),
		logging.Bool("highlight", spec.Highlight),
	)
	return path, spec, nil
}

// render probes the source and runs the renderer with progress tracking.
func (o *Orchestrator) render(ctx context.Context, logger *slog.Logger, result *Result, sourcePath, outputPath, filter string) error {
	renderCtx := services.WithStage(ctx, string(StatusRendering))
	probe, err := o.deps.Prober.Probe(renderCtx, sourcePath)
	if err != nil {
		return ensureMarker(services.ErrRender, "probe", "source", err)
	}

	o.report(result, StatusRendering, 0)
	tracker := NewProgressTracker(probe.TotalFrames)
	gate := logging.NewProgressGate(5, time.Minute)
	progressLogger := logging.WithContext(renderCtx, o.logger)
	progress := func(frame int64) {
		percent := tracker.Update(frame)
		o.report(result, StatusRendering, percent)
		if gate.Allow(percent) {
			progressLogger.Info("render progress",
				logging.String(logging.FieldEventType, "render_progress"),
				logging.Int64("frame", tracker.Frame()),
				logging.Int64("total_frames", probe.TotalFrames),
				logging.Float64("percent", percent),
			)
		}
	}

	if o.settings.RenderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(renderCtx, o.settings.RenderTimeout)
		defer cancel()
	}
	logger.Info("render started",
		logging.String(logging.FieldEventType, "render_start"),
		logging.Int64("total_frames", probe.TotalFrames),
		logging.Float64("duration_seconds", probe.DurationSeconds),
		logging.String("filter", filter),
	)
	req := ffmpeg.Request{
		InputPath:   sourcePath,
		OutputPath:  outputPath,
		VideoFilter: filter,
		AudioCodec:  "copy",
		VideoCodec:  o.settings.VideoCodec,
	}
	if err := o.deps.Renderer.Render(renderCtx, req, progress); err != nil {
		var renderErr *ffmpeg.RenderError
		if errors.As(err, &renderErr) {
			logger.Debug("ffmpeg stderr", logging.String("stderr", renderErr.Stderr))
		}
		return ensureMarker(services.ErrRender, "render", "ffmpeg", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrRender, "render", "ffmpeg", fmt.Sprintf("renderer produced no output at %s", outputPath), err)
	}
	tracker.Complete()
	o.report(result, StatusRendering, tracker.Percent())
	return nil
}

// cleanup removes the job staging directory. Failures are logged and never
// replace the job's own error.
func (o *Orchestrator) cleanup(logger *slog.Logger, jobDir string) {
	if err := os.RemoveAll(jobDir); err != nil {
		logging.WarnWithContext(logger, "failed to remove staging directory", "staging_cleanup_failed",
			logging.String("staging_dir", jobDir),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
			logging.String(logging.FieldImpact, "staging disk usage is not reclaimed"),
			logging.Error(err),
		)
		return
	}
	logger.Debug("staging directory removed", logging.String("staging_dir", jobDir))
}

func outputExtension(sourcePath string) string {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if _, ok := outputContainers[ext]; ok {
		return ext
	}
	return ".mp4"
}
