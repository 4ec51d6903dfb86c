package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"captionforge/internal/config"
	"captionforge/internal/resultcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the result cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))
	cacheCmd.AddCommand(newCacheJanitorCommand(ctx))

	return cacheCmd
}

// withCache opens the configured store for fn. A disabled cache prints a
// notice and skips fn.
func withCache(cmd *cobra.Command, ctx *commandContext, fn func(*config.Config, resultcache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Result cache is disabled (cache.enabled = false)")
		return nil
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	store, err := resultcache.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(cfg *config.Config, store resultcache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Result cache is empty")
					return nil
				}
				const stampLayout = "2006-01-02 15:04"
				now := time.Now()
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						shortFingerprint(entry.Fingerprint),
						entry.JobID,
						entry.OutputRef,
						entry.CreatedAt.Local().Format(stampLayout),
						yesNo(entry.Expired(cfg.CacheTTL(), now)),
					})
				}
				title := fmt.Sprintf("%s cache (%d entries)", cfg.Cache.Backend, len(entries))
				fmt.Fprintln(out, renderTable(title, []string{"Fingerprint", "Job", "Output", "Created", "Expired"}, rows))
				return nil
			})
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <fingerprint>",
		Short: "Print one cached result as JSON (a unique prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(_ *config.Config, store resultcache.Store) error {
				entry, err := findEntry(cmd, store, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, entry)
			})
		},
	}
}

func findEntry(cmd *cobra.Command, store resultcache.Store, prefix string) (resultcache.Entry, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return resultcache.Entry{}, fmt.Errorf("fingerprint is required")
	}
	entries, err := store.List(cmd.Context())
	if err != nil {
		return resultcache.Entry{}, err
	}
	var matches []resultcache.Entry
	for _, entry := range entries {
		if entry.Fingerprint == prefix {
			return entry, nil
		}
		if strings.HasPrefix(entry.Fingerprint, prefix) {
			matches = append(matches, entry)
		}
	}
	switch len(matches) {
	case 0:
		return resultcache.Entry{}, fmt.Errorf("no cached result matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return resultcache.Entry{}, fmt.Errorf("fingerprint prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(cfg *config.Config, store resultcache.Store) error {
				if expiredOnly && cfg.CacheTTL() <= 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No expiry configured (cache.ttl_hours = 0); nothing to purge")
					return nil
				}
				removed, err := store.Purge(cmd.Context(), !expiredOnly)
				if err != nil {
					return err
				}
				if removed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cache entries purged")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache entries\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "Only remove entries older than cache.ttl_hours")
	return cmd
}

func newCacheJanitorCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "janitor",
		Short: "Purge expired results on cache.purge_schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(cfg *config.Config, store resultcache.Store) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				janitor, err := resultcache.NewJanitor(store, cfg.Cache.PurgeSchedule, logger)
				if err != nil {
					return err
				}
				if once {
					removed, err := janitor.RunOnce(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired cache entries\n", removed)
					return nil
				}

				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				fmt.Fprintf(cmd.OutOrStdout(), "Cache janitor running (%s); next purge %s\n",
					cfg.Cache.PurgeSchedule, janitor.Next(time.Now()).Local().Format(time.RFC3339))
				return janitor.Run(signalCtx)
			})
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Purge expired entries once and exit")
	return cmd
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
