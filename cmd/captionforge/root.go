package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	root := &cobra.Command{
		Use:   "captionforge",
		Short: "Burn styled captions into videos",
		Long: `captionforge renders subtitle files onto videos with ffmpeg.

Jobs are fingerprinted so identical requests are served from the result
cache, and batches run on a bounded worker pool.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch strings.ToLower(strings.TrimSpace(flags.logLevel)) {
			case "", "debug", "info", "warn", "error":
			default:
				return fmt.Errorf("--log-level must be debug, info, warn or error (got %q)", flags.logLevel)
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (default ~/.config/captionforge/config.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Override logging.level for this invocation")

	root.AddCommand(
		newRenderCommand(ctx),
		newBatchCommand(ctx),
		newFontsCommand(ctx),
		newCacheCommand(ctx),
		newCheckCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
