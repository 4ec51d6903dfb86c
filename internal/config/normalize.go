package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFonts()
	c.normalizeRender()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeCache()
	c.normalizeFetch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if fonts := strings.TrimSpace(c.Paths.FontsDir); fonts == "" || fonts == defaultFontsDir {
		if value, ok := os.LookupEnv(defaultFontsDirEnvVar); ok && strings.TrimSpace(value) != "" {
			c.Paths.FontsDir = strings.TrimSpace(value)
		} else {
			c.Paths.FontsDir = defaultFontsDir
		}
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.FontsDir, err = expandPath(c.Paths.FontsDir); err != nil {
		return fmt.Errorf("paths.fonts_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFonts() {
	c.Fonts.DefaultFamily = strings.TrimSpace(c.Fonts.DefaultFamily)
	if c.Fonts.DefaultFamily == "" {
		c.Fonts.DefaultFamily = defaultFontFamily
	}
}

func (c *Config) normalizeRender() {
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	c.Render.FCListBinary = strings.TrimSpace(c.Render.FCListBinary)
	if c.Render.FCListBinary == "" {
		c.Render.FCListBinary = defaultFCListBinary
	}
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	if c.Render.TimeoutMinutes < 0 {
		c.Render.TimeoutMinutes = 0
	}
	if c.Render.StderrTailKB <= 0 {
		c.Render.StderrTailKB = defaultStderrTailKB
	}
}

func (c *Config) normalizeStorage() error {
	if value, ok := os.LookupEnv(defaultStorageBackendEnv); ok && strings.TrimSpace(value) != "" {
		c.Storage.Backend = value
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	if c.Storage.Bucket == "" {
		if value, ok := os.LookupEnv(defaultBucketEnvVar); ok {
			c.Storage.Bucket = strings.TrimSpace(value)
		}
	}
	c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicBaseURL), "/")
	if c.Storage.PublicBaseURL == "" {
		if value, ok := os.LookupEnv(defaultPublicBaseEnvVar); ok {
			c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" || c.Storage.Region == defaultS3Region {
		if value, ok := os.LookupEnv("AWS_REGION"); ok && strings.TrimSpace(value) != "" {
			c.Storage.Region = strings.TrimSpace(value)
		} else {
			c.Storage.Region = defaultS3Region
		}
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
	if strings.TrimSpace(c.Storage.LocalDir) == "" {
		c.Storage.LocalDir = defaultLocalStorageDir
	}
	var err error
	if c.Storage.LocalDir, err = expandPath(c.Storage.LocalDir); err != nil {
		return fmt.Errorf("storage.local_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if c.Cache.TTLHours < 0 {
		c.Cache.TTLHours = 0
	}
	c.Cache.PurgeSchedule = strings.TrimSpace(c.Cache.PurgeSchedule)
	if c.Cache.PurgeSchedule == "" {
		c.Cache.PurgeSchedule = defaultCachePurge
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
