package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"captionforge/internal/captionjob"
	"captionforge/internal/captions"
	"captionforge/internal/config"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		jobID         string
		source        string
		subtitles     string
		subtitlesFile string
		dialect       string
		optionFlags   []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one caption job and print its result as JSON",
		Example: `  captionforge render --source clip.mp4 --subtitles-file clip.srt \
    -o font_name=Roboto -o font_size=32 -o primary_color='&H00FFFFFF'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := subtitlePayload(subtitles, subtitlesFile)
			if err != nil {
				return err
			}
			options, err := parseOptionFlags(optionFlags)
			if err != nil {
				return err
			}
			job := captionjob.Job{
				ID:        jobID,
				SourceRef: source,
				Subtitles: payload,
				Dialect:   dialect,
				Options:   options,
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			printer := newProgressPrinter(cmd.ErrOrStderr(), true)
			p, err := ctx.openPipeline(signalCtx, printer.reporter())
			if err != nil {
				return err
			}
			defer p.Close()
			if err := p.preflightGate(signalCtx); err != nil {
				return err
			}

			result, runErr := p.orchestrator.Run(signalCtx, job)
			printer.finish()
			if err := writeJSON(cmd, result); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&jobID, "id", "", "Job identifier (generated when empty)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Source video path or http(s) URL")
	cmd.Flags().StringVar(&subtitles, "subtitles", "", "Inline subtitle payload or http(s) URL")
	cmd.Flags().StringVarP(&subtitlesFile, "subtitles-file", "f", "", "Read the subtitle payload from a file")
	cmd.Flags().StringVarP(&dialect, "dialect", "d", string(captions.DialectSRT), "Subtitle dialect (srt, vtt, ass, simple, advanced)")
	cmd.Flags().StringArrayVarP(&optionFlags, "option", "o", nil, "Style option as name=value (repeatable; last wins)")
	_ = cmd.MarkFlagRequired("source")
	cmd.MarkFlagsMutuallyExclusive("subtitles", "subtitles-file")
	return cmd
}

func subtitlePayload(inline, file string) (string, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		if strings.TrimSpace(inline) == "" {
			return "", errors.New("one of --subtitles or --subtitles-file is required")
		}
		return inline, nil
	}
	path, err := config.ExpandPath(file)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read subtitles: %w", err)
	}
	return string(data), nil
}

// parseOptionFlags turns name=value flags into ordered option pairs. Values
// are read as TOML scalars (32, true, 1.5, "quoted"); anything else is kept
// as a bare string.
func parseOptionFlags(flags []string) ([]captions.Option, error) {
	options := make([]captions.Option, 0, len(flags))
	for _, flag := range flags {
		name, raw, ok := strings.Cut(flag, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid option %q (expected name=value)", flag)
		}
		options = append(options, captions.Option{Name: name, Value: scalarValue(strings.TrimSpace(raw))})
	}
	return options, nil
}

func scalarValue(raw string) any {
	if raw == "" {
		return ""
	}
	var doc struct {
		V any `toml:"v"`
	}
	if err := toml.Unmarshal([]byte("v = "+raw), &doc); err != nil || doc.V == nil {
		return raw
	}
	switch doc.V.(type) {
	case string, bool, int64, float64:
		return doc.V
	default:
		return raw
	}
}
