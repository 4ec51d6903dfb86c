package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"captionforge/internal/config"
	"captionforge/internal/deps"
	"captionforge/internal/fonts"
	"captionforge/internal/storage"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFonts verifies the fonts directory is readable, holds at least one font,
// and contains the default family used for fallback.
func CheckFonts(dir, defaultFamily string) Result {
	const name = "Fonts"
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", dir, err)}
	}
	catalog, err := fonts.Discover(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	if catalog.Len() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no .ttf or .otf files)", dir)}
	}
	if family := strings.TrimSpace(defaultFamily); family != "" && !catalog.Allowed(family) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%d fonts; default family %q missing)", dir, catalog.Len(), family)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d fonts)", dir, catalog.Len())}
}

// CheckStorage asks the uploader to verify its target. Uploaders without a
// check pass with a note.
func CheckStorage(ctx context.Context, uploader storage.Uploader) Result {
	const name = "Storage"
	checker, ok := uploader.(storage.Checker)
	if !ok {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not verified)", uploader.Bucket())}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := checker.Check(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", uploader.Bucket())}
}

// CheckSystemDeps evaluates the external binaries for cfg. fc-list only feeds
// diagnostics and is therefore optional.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Render.FFmpegBinary,
			Description: "Required for rendering captions",
		},
		{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobe(cfg.Render.FFmpegBinary, cfg.Render.FFprobeBinary),
			Description: "Required for frame counts",
		},
		{
			Name:        "fc-list",
			Command:     cfg.Render.FCListBinary,
			Description: "Lists fontconfig families for `captionforge fonts`",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
