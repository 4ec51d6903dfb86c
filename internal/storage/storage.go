package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"captionforge/internal/config"
	"captionforge/internal/services"
)

// Uploader publishes a local file and returns its public reference.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Bucket() string
}

// Checker is implemented by uploaders that can verify their target before
// any job runs.
type Checker interface {
	Check(ctx context.Context) error
}

var (
	_ Checker = (*LocalUploader)(nil)
	_ Checker = (*S3Uploader)(nil)
)

// New builds the uploader selected by cfg.Storage.Backend.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	if cfg == nil {
		return nil, storageError("configure", "configuration unavailable", nil)
	}
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		uploader, err := NewS3Uploader(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		return uploader, nil
	case config.StorageBackendLocal, "":
		return NewLocalUploader(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL), nil
	default:
		return nil, storageError("configure", fmt.Sprintf("unsupported backend %q", cfg.Storage.Backend), nil)
	}
}

// objectKey joins the optional prefix with the artifact filename.
func objectKey(prefix, localPath string) string {
	name := filepath.Base(localPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// publicURL joins base with an escaped key.
func publicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimRight(base, "/") + "/" + path.Join(segments...)
}

func storageError(operation, message string, err error) error {
	return services.Wrap(services.ErrStorage, "upload", operation, message, err)
}
