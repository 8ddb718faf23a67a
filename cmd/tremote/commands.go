package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tremote/internal/app"
	"tremote/internal/config"
	"tremote/internal/logging"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.CoreConfig, error)
	newClient  clientFactory
	runUI      func(ctx context.Context, opts app.Options, configPath string) error
	version    string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.LoadCoreConfig,
		newClient:  newDaemonClient,
		runUI:      app.Run,
		version:    buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	env := wiring.env()
	return map[string]commandRunner{
		"ui":               NewUICommand(env, wiring.runUI),
		"ls":               NewListCommand(env),
		"add":              NewAddCommand(env),
		"start":            NewStartCommand(env),
		"stop":             NewStopCommand(env),
		"verify":           NewVerifyCommand(env),
		"reannounce":       NewReannounceCommand(env),
		"remove":           NewRemoveCommand(env),
		"queue":            NewQueueCommand(env),
		"session":          NewSessionCommand(env),
		"alt-speed":        NewAltSpeedCommand(env),
		"port-test":        NewPortTestCommand(env),
		"blocklist-update": NewBlocklistCommand(env),
		"config":           NewConfigCommand(wiring.stdout, wiring.stderr),
		"version":          NewVersionCommand(wiring.stdout, wiring.version),
	}
}

func (w commandWiring) env() commandEnv {
	return commandEnv{
		stdout:     w.stdout,
		stderr:     w.stderr,
		loadConfig: w.loadConfig,
		newClient:  w.newClient,
	}
}

// commandEnv is what every daemon-facing command shares.
type commandEnv struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.CoreConfig, error)
	newClient  clientFactory
}

func (e commandEnv) config() (config.CoreConfig, error) {
	if e.loadConfig == nil {
		return config.DefaultCoreConfig(), nil
	}
	return e.loadConfig()
}

// connect loads the config and builds a client that logs to stderr.
func (e commandEnv) connect() (commandClient, config.CoreConfig, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, config.CoreConfig{}, err
	}
	logger := newCLILogger(e.stderr, cfg)
	client, err := e.newClient(cfg, logger)
	if err != nil {
		return nil, config.CoreConfig{}, err
	}
	return client, cfg, nil
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newCLILogger(out io.Writer, cfg config.CoreConfig) logging.Logger {
	opts := logging.Options{
		Level:   logging.ParseLevel(cfg.LogLevel()),
		App:     "tremote",
		Console: true,
	}
	opts = logging.ApplyEnvOverrides(opts)
	return logging.NewWithOptions(out, opts)
}
