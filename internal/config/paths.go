package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".tremote"

// DataDir returns the base data directory for tremote.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// CoreConfigPath returns the path to config.toml.
func CoreConfigPath() (string, error) {
	return dataPath("config.toml")
}

// PrefsDBPath returns the path to the persisted view preferences.
func PrefsDBPath() (string, error) {
	return dataPath("prefs.db")
}

// KeybindingsPath returns the optional keybinding overrides file.
func KeybindingsPath() (string, error) {
	return dataPath("keybindings.json")
}

// UILogPath returns the log file used while the TUI owns the terminal.
func UILogPath() (string, error) {
	return dataPath("ui.log")
}

func dataPath(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", err
	}
	return dataDir, nil
}
