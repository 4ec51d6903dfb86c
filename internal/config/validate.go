package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if c.Batch.Workers < 0 {
		return errors.New("batch.workers must be >= 0 (0 uses one worker per CPU)")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.FontsDir) == "" {
		return errors.New("paths.fonts_dir must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageBackendLocal:
		if strings.TrimSpace(c.Storage.LocalDir) == "" {
			return errors.New("storage.local_dir must be set when storage.backend is local")
		}
	case StorageBackendS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend. Set %s or edit the config file", defaultBucketEnvVar)
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (use %q or %q)", c.Storage.Backend, StorageBackendLocal, StorageBackendS3)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendSQLite:
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (use %q or %q)", c.Cache.Backend, CacheBackendFile, CacheBackendSQLite)
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set when cache.enabled is true")
	}
	if _, err := cron.ParseStandard(c.Cache.PurgeSchedule); err != nil {
		return fmt.Errorf("cache.purge_schedule: %w", err)
	}
	return nil
}
