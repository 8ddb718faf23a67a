package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchCoreConfigReloadsOnWrite(t *testing.T) {
	t.Setenv(EnvDaemonURL, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\nrefresh_rate_sec = 5\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	changes := make(chan CoreConfig, 4)
	w, err := WatchCoreConfig(path, 20*time.Millisecond, func(cfg CoreConfig, err error) {
		if err == nil {
			changes <- cfg
		}
	})
	if err != nil {
		t.Fatalf("WatchCoreConfig: %v", err)
	}
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o600); err != nil {
		t.Fatalf("WriteFile other: %v", err)
	}
	if err := os.WriteFile(path, []byte("[ui]\nrefresh_rate_sec = 9\n"), 0o600); err != nil {
		t.Fatalf("WriteFile update: %v", err)
	}

	select {
	case cfg := <-changes:
		if cfg.RefreshRateSec() != 9 {
			t.Fatalf("unexpected reloaded refresh rate: %d", cfg.RefreshRateSec())
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, err := WatchCoreConfig(path, 0, func(CoreConfig, error) {})
	if err != nil {
		t.Fatalf("WatchCoreConfig: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestWatchCoreConfigRequiresCallback(t *testing.T) {
	if _, err := WatchCoreConfig(filepath.Join(t.TempDir(), "config.toml"), 0, nil); err == nil {
		t.Fatalf("expected error without callback")
	}
}
