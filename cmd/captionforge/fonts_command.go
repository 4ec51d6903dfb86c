package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"captionforge/internal/fonts"
)

func newFontsCommand(ctx *commandContext) *cobra.Command {
	var skipFontconfig bool

	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List the font catalog and matching fontconfig families",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog, err := fonts.Discover(cfg.Paths.FontsDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if catalog.Len() == 0 {
				fmt.Fprintf(out, "No fonts found in %s\n", catalog.Dir())
				return nil
			}

			assets := catalog.Assets()
			defaultPath, _ := catalog.Lookup(cfg.Fonts.DefaultFamily)
			rows := make([][]string, 0, catalog.Len())
			for _, name := range catalog.Names() {
				path := assets[name]
				rows = append(rows, []string{name, filepath.Base(path), yesNo(path == defaultPath)})
			}
			fmt.Fprintln(out, renderTable(catalog.Dir(), []string{"Name", "File", "Default"}, rows))

			if skipFontconfig {
				return nil
			}
			families, err := catalog.ResolveInstalledNames(cmd.Context(), cfg.Render.FCListBinary)
			if err != nil {
				fmt.Fprintf(out, "Fontconfig families unavailable: %v\n", err)
				return nil
			}
			if len(families) == 0 {
				fmt.Fprintln(out, "Fontconfig families: none match the catalog")
				return nil
			}
			fmt.Fprintln(out, "Fontconfig families:")
			for _, family := range families {
				fmt.Fprintf(out, "  - %s\n", family)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipFontconfig, "no-fontconfig", false, "Skip the fc-list family lookup")
	return cmd
}
