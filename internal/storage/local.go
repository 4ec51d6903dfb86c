package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"captionforge/internal/fileutil"
)

// LocalUploader copies artifacts into a directory.
type LocalUploader struct {
	dir           string
	publicBaseURL string
}

// NewLocalUploader returns an uploader writing into dir.
func NewLocalUploader(dir, publicBaseURL string) *LocalUploader {
	return &LocalUploader{dir: dir, publicBaseURL: strings.TrimSpace(publicBaseURL)}
}

// Bucket returns the target directory.
func (u *LocalUploader) Bucket() string {
	return u.dir
}

// Check verifies the directory can be created and written.
func (u *LocalUploader) Check(context.Context) error {
	if strings.TrimSpace(u.dir) == "" {
		return storageError("local", "storage directory not configured", nil)
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return storageError("local", "create storage directory", err)
	}
	probe, err := os.CreateTemp(u.dir, ".check-*")
	if err != nil {
		return storageError("local", "storage directory not writable", err)
	}
	probe.Close()
	_ = os.Remove(probe.Name())
	return nil
}

// Upload copies localPath into the directory. The copy lands under a temporary
// name first so readers never observe a partial file.
func (u *LocalUploader) Upload(ctx context.Context, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storageError("local", "upload cancelled", err)
	}
	if strings.TrimSpace(u.dir) == "" {
		return "", storageError("local", "storage directory not configured", nil)
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", storageError("local", "create storage directory", err)
	}
	name := filepath.Base(localPath)
	target := filepath.Join(u.dir, name)
	if _, err := fileutil.CopyAtomic(localPath, target, 0o644); err != nil {
		return "", storageError("local", fmt.Sprintf("copy %s", name), err)
	}
	if u.publicBaseURL != "" {
		return publicURL(u.publicBaseURL, name), nil
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return (&url.URL{Scheme: "file", Path: abs}).String(), nil
}
