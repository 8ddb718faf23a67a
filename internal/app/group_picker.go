package app

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textinput"
	"github.com/sahilm/fuzzy"

	"tremote/internal/sanitizer"
	"tremote/internal/torrents"
	"tremote/internal/types"
)

const groupPickerMaxRows = 10

type groupOption struct {
	domain string
	label  string
	count  int
}

// groupPicker chooses a tracker domain to filter by. The first option always
// clears the group filter.
type groupPicker struct {
	input   textinput.Model
	options []groupOption
	matches []groupMatch
	cursor  int
}

type groupMatch struct {
	option  groupOption
	matched []int
}

func newGroupPicker(groups map[string]int, total int, current string) *groupPicker {
	input := textinput.New()
	input.Prompt = "tracker: "
	input.Placeholder = "type to filter"
	options := make([]groupOption, 0, len(groups)+1)
	options = append(options, groupOption{domain: torrents.GroupNone, label: "All trackers", count: total})
	domains := make([]string, 0, len(groups))
	for domain := range groups {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	for _, domain := range domains {
		label := sanitizer.Line(types.ReadableDomain(domain) + " (" + domain + ")")
		options = append(options, groupOption{domain: domain, label: label, count: groups[domain]})
	}
	p := &groupPicker{input: input, options: options}
	p.refilter()
	for i, match := range p.matches {
		if match.option.domain == current {
			p.cursor = i
		}
	}
	return p
}

func (p *groupPicker) Focus() tea.Cmd {
	return p.input.Focus()
}

func (p *groupPicker) SetWidth(width int) {
	p.input.SetWidth(max(10, width-len(p.input.Prompt)-4))
}

func (p *groupPicker) Query() string {
	return p.input.Value()
}

// refilter ranks options with fuzzy matching against the domain label; an
// empty query keeps the natural order.
func (p *groupPicker) refilter() {
	query := strings.TrimSpace(p.input.Value())
	p.matches = p.matches[:0]
	if query == "" {
		for _, option := range p.options {
			p.matches = append(p.matches, groupMatch{option: option})
		}
		p.cursor = clampIndex(p.cursor, len(p.matches))
		return
	}
	labels := make([]string, len(p.options))
	for i, option := range p.options {
		labels[i] = option.label
	}
	for _, match := range fuzzy.Find(query, labels) {
		p.matches = append(p.matches, groupMatch{option: p.options[match.Index], matched: match.MatchedIndexes})
	}
	p.cursor = clampIndex(p.cursor, len(p.matches))
}

func (p *groupPicker) Move(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = clampIndex(p.cursor+delta, len(p.matches))
}

// Selected returns the highlighted domain, or false when nothing matches.
func (p *groupPicker) Selected() (string, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return "", false
	}
	return p.matches[p.cursor].option.domain, true
}

// Update feeds keys to the query input and re-ranks on change.
func (p *groupPicker) Update(msg tea.Msg) tea.Cmd {
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.refilter()
	}
	return cmd
}

func (p *groupPicker) View(width int) string {
	lines := []string{p.input.View()}
	start := 0
	if p.cursor >= groupPickerMaxRows {
		start = p.cursor - groupPickerMaxRows + 1
	}
	end := min(len(p.matches), start+groupPickerMaxRows)
	for i := start; i < end; i++ {
		match := p.matches[i]
		label := highlightMatches(match.option.label, match.matched)
		line := fmt.Sprintf("%s  %d", label, match.option.count)
		if i == p.cursor {
			line = pickerActiveStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, truncateToWidth(line, width-4))
	}
	if len(p.matches) == 0 {
		lines = append(lines, helpStyle.Render("  no matching trackers"))
	}
	return pickerFrameStyle.Render(strings.Join(lines, "\n"))
}

func highlightMatches(label string, matched []int) string {
	if len(matched) == 0 {
		return label
	}
	hit := make(map[int]struct{}, len(matched))
	for _, idx := range matched {
		hit[idx] = struct{}{}
	}
	var b strings.Builder
	for i, r := range label {
		if _, ok := hit[i]; ok {
			b.WriteString(pickerMatchStyle.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func clampIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
