package config

const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"

	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
)

const (
	defaultStagingDir        = "~/.local/share/captionforge/staging"
	defaultFontsDir          = "/usr/share/fonts/custom"
	defaultLogDir            = "~/.local/share/captionforge/logs"
	defaultCacheDir          = "~/.cache/captionforge"
	defaultLocalStorageDir   = "~/.local/share/captionforge/output"
	defaultFontFamily        = "Arial"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultFCListBinary      = "fc-list"
	defaultStderrTailKB      = 8
	defaultStorageBackend    = StorageBackendLocal
	defaultCacheBackend      = CacheBackendFile
	defaultCachePurge        = "@daily"
	defaultFetchTimeout      = 300
	defaultFetchUserAgent    = "captionforge/dev"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultS3Region          = "us-east-1"
	defaultBucketEnvVar      = "CAPTIONFORGE_BUCKET"
	defaultPublicBaseEnvVar  = "CAPTIONFORGE_PUBLIC_BASE_URL"
	defaultFontsDirEnvVar    = "CAPTIONFORGE_FONTS_DIR"
	defaultStorageBackendEnv = "CAPTIONFORGE_STORAGE_BACKEND"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			FontsDir:   defaultFontsDir,
			LogDir:     defaultLogDir,
			CacheDir:   defaultCacheDir,
		},
		Fonts: Fonts{
			DefaultFamily: defaultFontFamily,
		},
		Render: Render{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			FCListBinary:  defaultFCListBinary,
			StderrTailKB:  defaultStderrTailKB,
		},
		Storage: Storage{
			Backend:  defaultStorageBackend,
			LocalDir: defaultLocalStorageDir,
			Region:   defaultS3Region,
		},
		Cache: Cache{
			Enabled:       true,
			Backend:       defaultCacheBackend,
			PurgeSchedule: defaultCachePurge,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeout,
			UserAgent:      defaultFetchUserAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
