package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultDaemonURL      = "http://127.0.0.1:9091"
	defaultTimeout        = 10 * time.Second
	defaultRefreshRateSec = 5
	minRefreshRateSec     = 2
	defaultDebounce       = 100 * time.Millisecond
	defaultDisplayMode    = "full"

	// EnvDaemonURL overrides [daemon] url.
	EnvDaemonURL = "TREMOTE_URL"
)

type CoreConfig struct {
	Daemon  CoreDaemonConfig  `toml:"daemon"`
	UI      CoreUIConfig      `toml:"ui"`
	Logging CoreLoggingConfig `toml:"logging"`
}

type CoreDaemonConfig struct {
	URL       string `toml:"url"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	TimeoutMS int    `toml:"timeout_ms"`
}

type CoreUIConfig struct {
	RefreshRateSec int    `toml:"refresh_rate_sec"`
	DisplayMode    string `toml:"display_mode"`
	DebounceMS     int    `toml:"debounce_ms"`
}

type CoreLoggingConfig struct {
	Level string `toml:"level"`
}

func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		Daemon: CoreDaemonConfig{
			URL:       defaultDaemonURL,
			TimeoutMS: int(defaultTimeout / time.Millisecond),
		},
		UI: CoreUIConfig{
			RefreshRateSec: defaultRefreshRateSec,
			DisplayMode:    defaultDisplayMode,
			DebounceMS:     int(defaultDebounce / time.Millisecond),
		},
		Logging: CoreLoggingConfig{
			Level: "info",
		},
	}
}

func LoadCoreConfig() (CoreConfig, error) {
	path, err := CoreConfigPath()
	if err != nil {
		return CoreConfig{}, err
	}
	cfg, err := loadCoreConfigFromPath(path)
	if err != nil {
		return CoreConfig{}, err
	}
	return cfg.withEnv(), nil
}

// LoadCoreConfigFrom reads an explicit file, still honoring TREMOTE_URL.
func LoadCoreConfigFrom(path string) (CoreConfig, error) {
	path, err := resolveConfigPath(path)
	if err != nil {
		return CoreConfig{}, err
	}
	cfg, err := loadCoreConfigFromPath(path)
	if err != nil {
		return CoreConfig{}, err
	}
	return cfg.withEnv(), nil
}

func (c CoreConfig) withEnv() CoreConfig {
	if raw := strings.TrimSpace(os.Getenv(EnvDaemonURL)); raw != "" {
		c.Daemon.URL = raw
	}
	return c
}

// DaemonURL returns the daemon base URL without the RPC path.
func (c CoreConfig) DaemonURL() string {
	raw := strings.TrimSpace(c.Daemon.URL)
	if raw == "" {
		return defaultDaemonURL
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	raw = strings.TrimRight(raw, "/")
	raw = strings.TrimSuffix(raw, "/transmission/rpc")
	raw = strings.TrimRight(raw, "/")
	if u, err := url.Parse(raw); err != nil || u.Host == "" {
		return defaultDaemonURL
	}
	return raw
}

func (c CoreConfig) DaemonTimeout() time.Duration {
	if c.Daemon.TimeoutMS <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.Daemon.TimeoutMS) * time.Millisecond
}

func (c CoreConfig) RefreshRateSec() int {
	rate := c.UI.RefreshRateSec
	if rate <= 0 {
		return defaultRefreshRateSec
	}
	if rate < minRefreshRateSec {
		return minRefreshRateSec
	}
	return rate
}

func (c CoreConfig) Debounce() time.Duration {
	if c.UI.DebounceMS <= 0 {
		return defaultDebounce
	}
	return time.Duration(c.UI.DebounceMS) * time.Millisecond
}

func (c CoreConfig) DisplayMode() string {
	switch mode := strings.ToLower(strings.TrimSpace(c.UI.DisplayMode)); mode {
	case "compact", "full":
		return mode
	default:
		return defaultDisplayMode
	}
}

func (c CoreConfig) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

// Redacted returns a copy safe to print.
func (c CoreConfig) Redacted() CoreConfig {
	if c.Daemon.Password != "" {
		c.Daemon.Password = "********"
	}
	return c
}

// Encode renders the config as TOML.
func (c CoreConfig) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// WriteDefaultCoreConfig creates config.toml with defaults unless it already
// exists. It reports whether a file was written.
func WriteDefaultCoreConfig() (string, bool, error) {
	path, err := CoreConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}
	data, err := DefaultCoreConfig().Encode()
	if err != nil {
		return "", false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func loadCoreConfigFromPath(path string) (CoreConfig, error) {
	cfg := DefaultCoreConfig()
	if err := readTOML(path, &cfg); err != nil {
		return CoreConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}
