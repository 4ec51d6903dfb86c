package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"captionforge/internal/captionjob"
	"captionforge/internal/captions"
	"captionforge/internal/config"
	"captionforge/internal/services/fetch"
)

// manifest is the TOML batch file format.
type manifest struct {
	Workers int           `toml:"workers"`
	Jobs    []manifestJob `toml:"jobs"`
}

type manifestJob struct {
	ID            string            `toml:"id"`
	Source        string            `toml:"source"`
	Subtitles     string            `toml:"subtitles"`
	SubtitlesFile string            `toml:"subtitles_file"`
	Dialect       string            `toml:"dialect"`
	Options       []captions.Option `toml:"options"`
}

type batchOutput struct {
	Results []captionjob.Result `json:"results"`
	Summary captionjob.Summary  `json:"summary"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <manifest.toml>",
		Short: "Render every job in a TOML manifest",
		Long: `Render every [[jobs]] entry of a TOML manifest on a bounded worker pool.

Results are printed as JSON in manifest order. A failing job never stops the
others; the command exits non-zero when any job failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, manifestWorkers, err := loadManifest(args[0])
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			printer := newProgressPrinter(cmd.ErrOrStderr(), false)
			p, err := ctx.openPipeline(signalCtx, printer.reporter())
			if err != nil {
				return err
			}
			defer p.Close()
			if err := p.preflightGate(signalCtx); err != nil {
				return err
			}

			size := p.cfg.Batch.Workers
			if manifestWorkers > 0 {
				size = manifestWorkers
			}
			if cmd.Flags().Changed("workers") {
				size = workers
			}
			runner := captionjob.NewBatchRunner(p.orchestrator, size, p.logger)
			results := runner.RunAll(signalCtx, jobs)
			summary := captionjob.Summarize(results)
			if err := writeJSON(cmd, batchOutput{Results: results, Summary: summary}); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker pool size (0 uses one per CPU; overrides config and manifest)")
	return cmd
}

// loadManifest decodes path and inlines subtitles_file payloads. Relative
// local paths resolve against the manifest directory.
func loadManifest(path string) ([]captionjob.Job, int, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, 0, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, 0, fmt.Errorf("parse manifest %s: %w", resolved, err)
	}
	if len(m.Jobs) == 0 {
		return nil, 0, fmt.Errorf("manifest %s has no [[jobs]] entries", resolved)
	}
	if m.Workers < 0 {
		return nil, 0, fmt.Errorf("manifest workers must be >= 0")
	}

	base := filepath.Dir(resolved)
	jobs := make([]captionjob.Job, 0, len(m.Jobs))
	seen := make(map[string]int, len(m.Jobs))
	for i, entry := range m.Jobs {
		if id := strings.TrimSpace(entry.ID); id != "" {
			if prev, dup := seen[id]; dup {
				return nil, 0, fmt.Errorf("job %d: id %q already used by job %d", i+1, id, prev)
			}
			seen[id] = i + 1
		}
		payload := entry.Subtitles
		if file := strings.TrimSpace(entry.SubtitlesFile); file != "" {
			if strings.TrimSpace(payload) != "" {
				return nil, 0, fmt.Errorf("job %d: set subtitles or subtitles_file, not both", i+1)
			}
			if !filepath.IsAbs(file) {
				file = filepath.Join(base, file)
			}
			content, err := os.ReadFile(file)
			if err != nil {
				return nil, 0, fmt.Errorf("job %d: read subtitles: %w", i+1, err)
			}
			payload = string(content)
		}
		source := strings.TrimSpace(entry.Source)
		if source != "" && !fetch.IsRemote(source) && !strings.HasPrefix(source, "file://") && !filepath.IsAbs(source) {
			source = filepath.Join(base, source)
		}
		jobs = append(jobs, captionjob.Job{
			ID:        entry.ID,
			SourceRef: source,
			Subtitles: payload,
			Dialect:   entry.Dialect,
			Options:   entry.Options,
		})
	}
	return jobs, m.Workers, nil
}
