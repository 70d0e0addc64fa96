// ABOUTME: Tests for application directory resolution
// ABOUTME: Verifies XDG overrides and log file creation
package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir failed: %v", err)
	}
	want := filepath.Join("/tmp/xdg-config", appDirName)
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestCacheDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir failed: %v", err)
	}
	want := filepath.Join("/tmp/xdg-cache", appDirName)
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestStateDirFallsBackToCache(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir failed: %v", err)
	}
	want := filepath.Join("/tmp/xdg-cache", appDirName)
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestStateDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	dir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir failed: %v", err)
	}
	want := filepath.Join("/tmp/xdg-state", appDirName)
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestLogFileCreatesStateDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)

	path, err := LogFile()
	if err != nil {
		t.Fatalf("LogFile failed: %v", err)
	}
	if !strings.HasSuffix(path, "player.log") {
		t.Errorf("expected log file path, got %s", path)
	}

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("expected state dir to exist: %v", err)
	}
}
