package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"tremote/internal/app"
	"tremote/internal/config"
	"tremote/internal/logging"
	"tremote/internal/store"
)

type UICommand struct {
	env   commandEnv
	runUI func(ctx context.Context, opts app.Options, configPath string) error
}

func NewUICommand(env commandEnv, runUI func(ctx context.Context, opts app.Options, configPath string) error) *UICommand {
	return &UICommand{env: env, runUI: runUI}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	noWatch := fs.Bool("no-watch", false, "do not reload config.toml while running")
	keysPath := fs.String("keybindings", "", "keybindings file (default ~/.tremote/keybindings.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.env.config()
	if err != nil {
		return err
	}
	if _, err := config.EnsureDataDir(); err != nil {
		return err
	}

	logger, closeLog := openUILogger(cfg)
	defer closeLog()

	apiClient, err := c.env.newClient(cfg, logger)
	if err != nil {
		return err
	}

	path := strings.TrimSpace(*keysPath)
	if path == "" {
		path, _ = config.KeybindingsPath()
	}
	bindings, err := app.LoadKeybindings(path)
	if err != nil {
		logger.Warn("keybindings ignored", logging.F("path", path), logging.F("error", err))
		bindings = app.DefaultKeybindings()
	}

	prefs := openPrefs(logger)
	defer prefs.Close()

	configPath := ""
	if !*noWatch {
		configPath, _ = config.CoreConfigPath()
	}

	ctx, stop := commandContext()
	defer stop()
	logger.Info("ui starting", logging.F("daemon", cfg.DaemonURL()))
	return c.runUI(ctx, app.Options{
		API:         apiClient,
		Prefs:       prefs,
		Profile:     cfg.DaemonURL(),
		Config:      cfg,
		Logger:      logger,
		Keybindings: bindings,
	}, configPath)
}

func openPrefs(logger logging.Logger) store.PrefsStore {
	path, err := config.PrefsDBPath()
	if err != nil {
		logger.Warn("prefs not persisted", logging.F("error", err))
		return store.NewMemoryPrefsStore()
	}
	prefs, err := store.OpenPrefsStore(path)
	if err != nil {
		logger.Warn("prefs not persisted", logging.F("path", path), logging.F("error", err))
	}
	return prefs
}

// openUILogger writes to ui.log since the terminal belongs to the UI.
func openUILogger(cfg config.CoreConfig) (logging.Logger, func()) {
	path, err := config.UILogPath()
	if err != nil {
		return logging.Nop(), func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return logging.Nop(), func() {}
	}
	opts := logging.ApplyEnvOverrides(logging.Options{
		Level:   logging.ParseLevel(cfg.LogLevel()),
		App:     "tremote-ui",
		Console: true,
		NoColor: true,
	})
	return logging.NewWithOptions(file, opts), func() { _ = file.Close() }
}
