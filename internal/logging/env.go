package logging

import (
	"os"
	"strconv"
	"strings"
)

const (
	EnvLogLevel   = "TREMOTE_LOG_LEVEL"
	EnvLogNoColor = "TREMOTE_LOG_NOCOLOR"
	EnvLogJSON    = "TREMOTE_LOG_JSON"
)

// ApplyEnvOverrides layers environment variables on top of configured options.
func ApplyEnvOverrides(opts Options) Options {
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		opts.Level = ParseLevel(raw)
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
		opts.Console = !v
	}
	return opts
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
