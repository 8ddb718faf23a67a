package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

type Field struct {
	Key   string
	Value any
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Enabled(level Level) bool
}

type Options struct {
	Level   Level
	App     string
	NoColor bool
	// Console renders human readable lines instead of JSON.
	Console bool
}

type zeroLogger struct {
	zl    zerolog.Logger
	level Level
}

func New(out io.Writer, level Level) Logger {
	return NewWithOptions(out, Options{Level: level, Console: true, NoColor: true})
}

func NewWithOptions(out io.Writer, opts Options) Logger {
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: opts.NoColor}
	}
	ctx := zerolog.New(out).Level(zerologLevel(opts.Level)).With().Timestamp()
	if app := strings.TrimSpace(opts.App); app != "" {
		ctx = ctx.Str("app", app)
	}
	return &zeroLogger{zl: ctx.Logger(), level: opts.Level}
}

func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop(), level: Error + 1}
}

func (l *zeroLogger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	return level >= l.level
}

func (l *zeroLogger) With(fields ...Field) Logger {
	if l == nil {
		return Nop()
	}
	ctx := l.zl.With()
	for _, field := range fields {
		ctx = ctx.Interface(field.Key, normalizeValue(field.Value))
	}
	return &zeroLogger{zl: ctx.Logger(), level: l.level}
}

func (l *zeroLogger) Debug(msg string, fields ...Field) { l.log(Debug, msg, fields...) }
func (l *zeroLogger) Info(msg string, fields ...Field)  { l.log(Info, msg, fields...) }
func (l *zeroLogger) Warn(msg string, fields ...Field)  { l.log(Warn, msg, fields...) }
func (l *zeroLogger) Error(msg string, fields ...Field) { l.log(Error, msg, fields...) }

func (l *zeroLogger) log(level Level, msg string, fields ...Field) {
	if l == nil || level < l.level {
		return
	}
	event := l.zl.WithLevel(zerologLevel(level))
	if event == nil {
		return
	}
	for _, field := range fields {
		event = event.Interface(field.Key, normalizeValue(field.Value))
	}
	event.Msg(msg)
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return value
	}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}
