package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"captionforge/internal/deps"
	"captionforge/internal/preflight"
	"captionforge/internal/storage"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify binaries, directories, fonts, and storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckSystemDeps(cfg)
			depRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
				}
				depRows = append(depRows, []string{status.Name, status.Command, state, status.Detail})
			}
			fmt.Fprintln(out, renderTable("Dependencies", []string{"Name", "Command", "Status", "Detail"}, depRows))

			uploader, uploaderErr := storage.New(cmd.Context(), cfg)
			results := preflight.RunAll(cmd.Context(), cfg, uploader)
			if uploaderErr != nil {
				results = append(results, preflight.Result{Name: "Storage", Detail: uploaderErr.Error()})
			}
			checkRows := make([][]string, 0, len(results))
			for _, result := range results {
				checkRows = append(checkRows, []string{result.Name, passLabel(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, renderTable("Preflight", []string{"Check", "Result", "Detail"}, checkRows))

			missing := deps.MissingRequired(statuses)
			failed := preflight.Failed(results)
			if len(missing) > 0 || len(failed) > 0 {
				return fmt.Errorf("%d required dependencies missing, %d checks failed", len(missing), len(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func passLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "FAIL"
}
