package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"tremote/internal/app"
	"tremote/internal/config"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type configOutput struct {
	CoreConfigPath  string            `json:"core_config_path" toml:"core_config_path"`
	KeybindingsPath string            `json:"keybindings_path" toml:"keybindings_path"`
	PrefsPath       string            `json:"prefs_path" toml:"prefs_path"`
	Daemon          configDaemonOut   `json:"daemon" toml:"daemon"`
	UI              configUIOut       `json:"ui" toml:"ui"`
	Logging         configLoggingOut  `json:"logging" toml:"logging"`
	Keybindings     map[string]string `json:"keybindings,omitempty" toml:"keybindings,omitempty"`
}

type configUIOut struct {
	RefreshRateSec int    `json:"refresh_rate_sec" toml:"refresh_rate_sec"`
	DisplayMode    string `json:"display_mode" toml:"display_mode"`
	DebounceMS     int    `json:"debounce_ms" toml:"debounce_ms"`
}

type configDaemonOut struct {
	URL       string `json:"url" toml:"url"`
	Username  string `json:"username,omitempty" toml:"username,omitempty"`
	Password  string `json:"password,omitempty" toml:"password,omitempty"`
	TimeoutMS int    `json:"timeout_ms" toml:"timeout_ms"`
}

type configLoggingOut struct {
	Level string `json:"level" toml:"level"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatTOML, "output format: json|toml")
	keys := fs.Bool("keybindings", false, "include resolved keybindings")
	initFile := fs.Bool("init", false, "write config.toml with defaults if it does not exist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *initFile {
		path, written, err := config.WriteDefaultCoreConfig()
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(c.stdout, "wrote %s\n", path)
		} else {
			fmt.Fprintf(c.stdout, "%s already exists\n", path)
		}
		return nil
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	payload, err := buildConfigOutput(*defaults, *keys)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func buildConfigOutput(defaults, includeKeys bool) (configOutput, error) {
	cfg := config.DefaultCoreConfig()
	if !defaults {
		loaded, err := config.LoadCoreConfig()
		if err != nil {
			return configOutput{}, err
		}
		cfg = loaded
	}
	cfg = cfg.Redacted()

	out := configOutput{
		Daemon: configDaemonOut{
			URL:       cfg.DaemonURL(),
			Username:  cfg.Daemon.Username,
			Password:  cfg.Daemon.Password,
			TimeoutMS: int(cfg.DaemonTimeout().Milliseconds()),
		},
		UI: configUIOut{
			RefreshRateSec: cfg.RefreshRateSec(),
			DisplayMode:    cfg.DisplayMode(),
			DebounceMS:     int(cfg.Debounce().Milliseconds()),
		},
		Logging: configLoggingOut{Level: cfg.LogLevel()},
	}

	var err error
	if out.CoreConfigPath, err = config.CoreConfigPath(); err != nil {
		return configOutput{}, err
	}
	if out.KeybindingsPath, err = config.KeybindingsPath(); err != nil {
		return configOutput{}, err
	}
	if out.PrefsPath, err = config.PrefsDBPath(); err != nil {
		return configOutput{}, err
	}

	if includeKeys {
		bindings := app.DefaultKeybindings()
		if !defaults {
			bindings, err = app.LoadKeybindings(out.KeybindingsPath)
			if err != nil {
				return configOutput{}, err
			}
		}
		out.Keybindings = bindings.Bindings()
	}
	return out, nil
}

func resolveConfigFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "", configFormatTOML:
		return configFormatTOML, nil
	case configFormatJSON:
		return configFormatJSON, nil
	default:
		return "", errors.New("format must be json or toml")
	}
}

func writeConfigOutput(out io.Writer, format string, payload configOutput) error {
	switch format {
	case configFormatJSON:
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
}
