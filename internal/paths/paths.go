// ABOUTME: Platform application directory resolution
// ABOUTME: Honors XDG environment overrides with OS defaults as fallback
package paths

import (
	"os"
	"path/filepath"
)

const appDirName = "sendspin-player"

// ConfigDir returns the directory for configuration files.
// XDG_CONFIG_HOME takes precedence over the platform default.
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// CacheDir returns the directory for cached data.
// XDG_CACHE_HOME takes precedence over the platform default.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}

	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// StateDir returns the directory for logs and other mutable state.
// XDG_STATE_HOME takes precedence; without it, state lives under the
// cache directory.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}

	return CacheDir()
}

// LogFile returns the default log file path, creating the state
// directory if needed.
func LogFile() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "player.log"), nil
}
