package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"captionforge/internal/fileutil"
)

const (
	defaultConfigLocation = "~/.config/captionforge/config.toml"
	projectConfigName     = "captionforge.toml"
)

// DefaultConfigPath is the per-user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// ExpandPath resolves a leading ~ and returns a cleaned absolute path.
// Empty input stays empty.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}

// locate picks the config file. An explicit path is used as-is (it may not
// exist yet); otherwise the user file wins over ./captionforge.toml, and the
// user path is reported when neither exists.
func locate(explicit string) (string, bool, error) {
	if explicit != "" {
		p, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		found, err := isFile(p)
		return p, found, err
	}

	user, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	project, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{user, project} {
		if found, _ := isFile(candidate); found {
			return candidate, true, nil
		}
	}
	return user, false, nil
}

func isFile(p string) (bool, error) {
	info, err := os.Stat(p)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat config: %w", err)
	}
}

// CreateSample writes the commented sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := fileutil.WriteAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
