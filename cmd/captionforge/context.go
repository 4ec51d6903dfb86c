package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"captionforge/internal/captionjob"
	"captionforge/internal/config"
	"captionforge/internal/deps"
	"captionforge/internal/fonts"
	"captionforge/internal/logging"
	"captionforge/internal/media/ffprobe"
	"captionforge/internal/preflight"
	"captionforge/internal/resultcache"
	"captionforge/internal/services"
	"captionforge/internal/services/ffmpeg"
	"captionforge/internal/services/fetch"
	"captionforge/internal/storage"
)

// globalFlags holds the persistent root flags.
type globalFlags struct {
	configPath string
	logLevel   string
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := loadDotEnv(); err != nil {
			c.configErr = err
			return
		}
		var path string
		if c.flags != nil {
			path = strings.TrimSpace(c.flags.configPath)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.flags != nil && strings.TrimSpace(c.flags.logLevel) != "" {
			cfg.Logging.Level = strings.TrimSpace(c.flags.logLevel)
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// loadDotEnv reads ./.env when present. Variables already set win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

// pipeline bundles the collaborators behind one orchestrator.
type pipeline struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        resultcache.Store
	uploader     storage.Uploader
	orchestrator *captionjob.Orchestrator
}

func (p *pipeline) Close() error {
	if p == nil || p.store == nil {
		return nil
	}
	return p.store.Close()
}

// openPipeline wires the configured collaborators. reporter may be nil.
func (c *commandContext) openPipeline(ctx context.Context, reporter captionjob.ProgressReporter) (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	catalog, err := fonts.Discover(cfg.Paths.FontsDir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "startup", "fonts", "", err)
	}
	uploader, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := resultcache.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(cfg)
	orch, err := captionjob.NewOrchestrator(captionjob.Settings{
		StagingDir:    cfg.Paths.StagingDir,
		DefaultFont:   cfg.Fonts.DefaultFamily,
		VideoCodec:    cfg.Render.VideoCodec,
		RenderTimeout: cfg.RenderTimeout(),
	}, captionjob.Dependencies{
		Fonts:      catalog,
		Cache:      store,
		Downloader: fetcher,
		Subtitles:  fetcher,
		Renderer:   ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.Render.FFmpegBinary), ffmpeg.WithStderrTail(cfg.StderrTailBytes())),
		Prober:     ffprobe.NewProber(deps.ResolveFFprobe(cfg.Render.FFmpegBinary, cfg.Render.FFprobeBinary)),
		Uploader:   uploader,
		Reporter:   reporter,
		Logger:     logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &pipeline{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		uploader:     uploader,
		orchestrator: orch,
	}, nil
}

// preflightGate fails fast when a required binary or directory is unusable.
func (p *pipeline) preflightGate(ctx context.Context) error {
	var problems []string
	for _, status := range deps.MissingRequired(preflight.CheckSystemDeps(p.cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", status.Name, status.Detail))
	}
	for _, result := range preflight.Failed(preflight.RunAll(ctx, p.cfg, p.uploader)) {
		problems = append(problems, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check",
		strings.Join(problems, "; ")+" (run `captionforge check` for details)", nil)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
