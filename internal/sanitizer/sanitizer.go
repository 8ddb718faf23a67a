// Package sanitizer cleans daemon-supplied text (torrent names, tracker
// messages, comments) before it is written to a terminal.
package sanitizer

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

type InputSanitizer interface {
	Sanitize(input string) string
}

type Config struct {
	AllowNewlines      bool
	ReplaceNewlineWith string
	ReplaceTabWith     string
	// MaxWidth truncates to this many terminal cells when positive.
	MaxWidth int
}

type TerminalSanitizer struct {
	config Config
}

func NewTerminalSanitizer(config Config) *TerminalSanitizer {
	return &TerminalSanitizer{config: config}
}

func DefaultConfig() Config {
	return Config{
		AllowNewlines:  true,
		ReplaceTabWith: "    ",
	}
}

func SingleLineConfig() Config {
	return Config{
		AllowNewlines:      false,
		ReplaceNewlineWith: " ",
		ReplaceTabWith:     " ",
	}
}

func (s *TerminalSanitizer) Sanitize(input string) string {
	if input == "" {
		return input
	}
	input = ansi.Strip(input)

	var b strings.Builder
	b.Grow(len(input))
	pendingCR := false
	for _, r := range input {
		if pendingCR && r != '\n' {
			s.writeNewline(&b)
		}
		pendingCR = false
		switch {
		case r == '\r':
			pendingCR = true
		case r == '\n':
			s.writeNewline(&b)
		case r == '\t':
			b.WriteString(s.config.ReplaceTabWith)
		case r == utf8.RuneError:
			b.WriteRune(utf8.RuneError)
		case isControl(r), isBidiControl(r):
		default:
			b.WriteRune(r)
		}
	}
	if pendingCR {
		s.writeNewline(&b)
	}

	out := b.String()
	if s.config.MaxWidth > 0 && runewidth.StringWidth(out) > s.config.MaxWidth {
		out = runewidth.Truncate(out, s.config.MaxWidth, "…")
	}
	return out
}

func (s *TerminalSanitizer) writeNewline(b *strings.Builder) {
	if s.config.AllowNewlines {
		b.WriteByte('\n')
		return
	}
	b.WriteString(s.config.ReplaceNewlineWith)
}

type ChainedSanitizer struct {
	sanitizers []InputSanitizer
}

func NewChainedSanitizer(sanitizers ...InputSanitizer) *ChainedSanitizer {
	return &ChainedSanitizer{sanitizers: sanitizers}
}

func (c *ChainedSanitizer) Sanitize(input string) string {
	for _, s := range c.sanitizers {
		input = s.Sanitize(input)
	}
	return input
}

var (
	lineSanitizer = NewTerminalSanitizer(SingleLineConfig())
	textSanitizer = NewTerminalSanitizer(DefaultConfig())
)

// Line flattens input onto one line, e.g. for list rows and table cells.
func Line(input string) string {
	return lineSanitizer.Sanitize(input)
}

// Text keeps line breaks, e.g. for torrent comments.
func Text(input string) string {
	return textSanitizer.Sanitize(input)
}
