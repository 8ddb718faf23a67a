package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"tremote/internal/config"
	"tremote/internal/logging"
)

// Run starts the terminal UI and blocks until it exits. When configPath is
// set, edits to that file are applied while the UI is running.
func Run(ctx context.Context, opts Options, configPath string) error {
	model := NewModel(opts)
	if opts.Prefs != nil {
		loadCtx, cancel := context.WithTimeout(ctx, prefsSaveTimeout)
		prefs, err := opts.Prefs.Load(loadCtx, opts.Profile)
		cancel()
		if err != nil {
			model.logger.Warn("prefs load failed", logging.F("profile", opts.Profile), logging.F("error", err))
		} else {
			model.SetPrefs(prefs)
		}
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	model.attach(program.Send)
	defer model.scheduler.Cancel()

	if configPath != "" {
		watcher, err := config.WatchCoreConfig(configPath, 0, func(cfg config.CoreConfig, err error) {
			program.Send(configReloadedMsg{cfg: cfg, err: err})
		})
		if err != nil {
			model.logger.Warn("config watch disabled", logging.F("path", configPath), logging.F("error", err))
		} else {
			defer watcher.Close()
		}
	}

	_, err := program.Run()
	return err
}
