package preflight

import (
	"context"

	"captionforge/internal/config"
	"captionforge/internal/storage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem, font, and storage checks for cfg. uploader
// may be nil, in which case the storage target is not probed.
func RunAll(ctx context.Context, cfg *config.Config, uploader storage.Uploader) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckFonts(cfg.Paths.FontsDir, cfg.Fonts.DefaultFamily))

	if cfg.Cache.Enabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}

	if uploader != nil {
		results = append(results, CheckStorage(ctx, uploader))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
