package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captionforge/internal/config"
	"captionforge/internal/storage"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func writeFonts(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("font"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCheckFonts(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFonts(dir, "Arial"); result.Passed {
		t.Fatal("expected failure for empty fonts dir")
	}

	writeFonts(t, dir, "Roboto.ttf")
	result := CheckFonts(dir, "Arial")
	if result.Passed || !strings.Contains(result.Detail, "Arial") {
		t.Fatalf("expected missing default family failure, got %+v", result)
	}

	writeFonts(t, dir, "arial.TTF")
	result = CheckFonts(dir, "Arial")
	if !result.Passed || !strings.Contains(result.Detail, "2 fonts") {
		t.Fatalf("expected pass, got %+v", result)
	}

	if result := CheckFonts(filepath.Join(dir, "missing"), "Arial"); result.Passed {
		t.Fatal("expected failure for missing dir")
	}
}

type brokenUploader struct{}

func (brokenUploader) Upload(context.Context, string) (string, error) { return "", nil }
func (brokenUploader) Bucket() string                                 { return "broken" }
func (brokenUploader) Check(context.Context) error                    { return errors.New("denied") }

type plainUploader struct{}

func (plainUploader) Upload(context.Context, string) (string, error) { return "", nil }
func (plainUploader) Bucket() string                                 { return "plain" }

func TestCheckStorage(t *testing.T) {
	local := storage.NewLocalUploader(t.TempDir(), "")
	if result := CheckStorage(context.Background(), local); !result.Passed {
		t.Fatalf("expected local storage to pass, got %+v", result)
	}
	if result := CheckStorage(context.Background(), brokenUploader{}); result.Passed || result.Detail != "denied" {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result := CheckStorage(context.Background(), plainUploader{}); !result.Passed || !strings.Contains(result.Detail, "not verified") {
		t.Fatalf("expected unverified pass, got %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.FontsDir = t.TempDir()
	cfg.Paths.CacheDir = t.TempDir()
	writeFonts(t, cfg.Paths.FontsDir, "Arial.ttf")

	results := RunAll(context.Background(), &cfg, storage.NewLocalUploader(t.TempDir(), ""))
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	cfg.Cache.Enabled = false
	if results := RunAll(context.Background(), &cfg, nil); len(results) != 2 {
		t.Fatalf("expected staging and fonts only, got %d", len(results))
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := config.Default()
	cfg.Render.FFmpegBinary = "definitely-missing-ffmpeg"
	cfg.Render.FCListBinary = "definitely-missing-fc-list"

	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected missing ffmpeg")
	}
	if !statuses[2].Optional {
		t.Fatal("fc-list should be optional")
	}
}
