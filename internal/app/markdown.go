package app

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"

	"tremote/internal/sanitizer"
)

// Resizing the terminal walks through many widths; keep only the recent ones.
const maxInspectorRenderers = 4

type inspectorRenderers struct {
	mu     sync.Mutex
	widths []int
	byW    map[int]*glamour.TermRenderer
}

var inspectorMarkdownRenderers = &inspectorRenderers{byW: map[int]*glamour.TermRenderer{}}

// renderMarkdown renders the inspector document at width and hard-wraps the
// result so wide table cells cannot overflow the panel. On any renderer
// failure the raw markdown is shown instead.
func renderMarkdown(input string, width int) string {
	input = strings.TrimRight(input, "\n")
	if input == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r, err := inspectorMarkdownRenderers.get(width)
	if err != nil {
		return input
	}
	out, err := r.Render(input)
	if err != nil {
		return input
	}
	return strings.TrimRight(xansi.Hardwrap(strings.TrimRight(out, "\n"), width, true), "\n")
}

func (c *inspectorRenderers) get(width int) (*glamour.TermRenderer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.byW[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleConfig()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	if len(c.widths) >= maxInspectorRenderers {
		delete(c.byW, c.widths[0])
		c.widths = c.widths[1:]
	}
	c.widths = append(c.widths, width)
	c.byW[width] = r
	return r, nil
}

func buildStyleConfig() glamouransi.StyleConfig {
	cfg := styles.DarkStyleConfig
	// The inspector frame supplies its own padding.
	cfg.Document.StylePrimitive.BlockPrefix = ""
	cfg.Document.StylePrimitive.BlockSuffix = ""
	noMargin := uint(0)
	cfg.Document.Margin = &noMargin

	headingColor := "63"
	cfg.H1.StylePrimitive.Color = &headingColor
	cfg.H1.StylePrimitive.BackgroundColor = nil
	cfg.H1.StylePrimitive.Prefix = ""
	cfg.H1.StylePrimitive.Suffix = ""

	errorColor := "203"
	cfg.BlockQuote.StylePrimitive.Color = &errorColor
	return cfg
}

var markdownInlineEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"`", "\\`",
	"*", "\\*",
	"_", "\\_",
	"[", "\\[",
	"]", "\\]",
	"|", "\\|",
)

// escapeMarkdown neutralizes daemon-supplied text (names, comments, error
// strings) so it renders literally.
func escapeMarkdown(text string) string {
	text = sanitizer.Text(text)
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(markdownInlineEscaper.Replace(line), " \t")
		if startsBlock(line) {
			line = "\\" + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// startsBlock reports whether line would open a heading, quote, list item or
// ordered list item.
func startsBlock(line string) bool {
	for _, prefix := range []string{"#", ">", "- ", "+ "} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	rest := strings.TrimLeft(line, "0123456789")
	return len(rest) < len(line) && strings.HasPrefix(rest, ". ")
}
