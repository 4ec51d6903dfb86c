package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	FontsDir   string `toml:"fonts_dir"`
	LogDir     string `toml:"log_dir"`
	CacheDir   string `toml:"cache_dir"`
}

// Fonts contains font catalog settings.
type Fonts struct {
	DefaultFamily string `toml:"default_family"`
}

// Render contains the external renderer and probe settings.
type Render struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	FCListBinary   string `toml:"fc_list_binary"`
	VideoCodec     string `toml:"video_codec"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
	StderrTailKB   int    `toml:"stderr_tail_kb"`
}

// Storage contains configuration for uploading rendered artifacts.
type Storage struct {
	Backend       string `toml:"backend"` // "local" or "s3"
	Bucket        string `toml:"bucket"`
	LocalDir      string `toml:"local_dir"`
	PublicBaseURL string `toml:"public_base_url"`
	Region        string `toml:"region"`
	Endpoint      string `toml:"endpoint"`
	Prefix        string `toml:"prefix"`
	PathStyle     bool   `toml:"path_style"`
}

// Cache contains configuration for the fingerprint result cache.
type Cache struct {
	Enabled       bool   `toml:"enabled"`
	Backend       string `toml:"backend"`   // "file" or "sqlite"
	TTLHours      int    `toml:"ttl_hours"` // 0 keeps entries until purged
	PurgeSchedule string `toml:"purge_schedule"`
}

// Batch contains worker pool settings.
type Batch struct {
	Workers int `toml:"workers"`
}

// Fetch contains settings for source and subtitle retrieval.
type Fetch struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for captionforge.
//
// Configuration sections by subsystem:
//   - Paths: staging, fonts, logs, and cache directories
//   - Fonts: default family used when a requested font cannot be resolved
//   - Render: ffmpeg/ffprobe/fc-list binaries and render limits
//   - Storage: where rendered videos are uploaded
//   - Cache: fingerprint result cache backend and expiry
//   - Batch: worker pool size
//   - Fetch: download timeouts
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Fonts   Fonts   `toml:"fonts"`
	Render  Render  `toml:"render"`
	Storage Storage `toml:"storage"`
	Cache   Cache   `toml:"cache"`
	Batch   Batch   `toml:"batch"`
	Fetch   Fetch   `toml:"fetch"`
	Logging Logging `toml:"logging"`
}

// Load reads the configuration at path, or the first file found among the
// default locations when path is empty, then normalizes and validates it.
// It also returns the file it settled on and whether that file exists; a
// missing file yields the defaults. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		raw, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		dec := toml.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config %s: unknown keys:\n%s", resolved, strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// EnsureDirectories creates every directory the pipeline writes into. The
// fonts directory is input and is left alone.
func (c *Config) EnsureDirectories() error {
	writable := []string{c.Paths.StagingDir, c.Paths.LogDir}
	if c.Cache.Enabled {
		writable = append(writable, c.Paths.CacheDir)
	}
	if c.Storage.Backend == StorageBackendLocal {
		writable = append(writable, c.Storage.LocalDir)
	}
	for _, dir := range writable {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CacheTTL is the age after which cache entries count as expired. Zero means
// entries live until purged.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLHours <= 0 {
		return 0
	}
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// RenderTimeout bounds a single ffmpeg run. Zero means unbounded.
func (c *Config) RenderTimeout() time.Duration {
	if c.Render.TimeoutMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Render.TimeoutMinutes) * time.Minute
}

// StderrTailBytes is how much trailing ffmpeg stderr a failed render keeps.
func (c *Config) StderrTailBytes() int {
	return c.Render.StderrTailKB * 1024
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// CacheDBPath is the database file used by the sqlite cache backend.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Paths.CacheDir, "results.db")
}
