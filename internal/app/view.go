package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"tremote/internal/sanitizer"
	"tremote/internal/torrents"
	"tremote/internal/types"
)

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	body := m.renderBody()
	lines := []string{m.renderHeader(), body}
	if m.mode == uiModeSearch {
		lines = append(lines, m.search.View())
	}
	help := helpStyle.Render(renderHotkeys(m.hotkeys, m.keybindings, m.mode))
	lines = append(lines, renderStatusLine(m.width, help, m.renderStatus()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderBody() string {
	switch m.mode {
	case uiModeGroupPicker:
		if m.picker != nil {
			return m.fitBody(m.picker.View(m.width))
		}
	case uiModeConfirm:
		if m.confirm != nil {
			return m.fitBody(dialogStyle.Render(m.confirm.prompt + "\n\n" + helpStyle.Render("y confirm • n cancel")))
		}
	case uiModeInspector:
		return m.renderInspector()
	}
	if !m.loaded && len(m.list.Items()) == 0 {
		return m.fitBody(helpStyle.Render("Connecting to " + m.cfg.DaemonURL() + "…"))
	}
	if len(m.list.Items()) == 0 {
		return m.fitBody(helpStyle.Render("No transfers match the current filter."))
	}
	return m.list.View()
}

func (m *Model) bodyHeight() int {
	h := m.height - chromeLines
	if m.mode == uiModeSearch {
		h--
	}
	return max(1, h)
}

func (m *Model) fitBody(content string) string {
	return lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(content)
}

func (m *Model) renderInspector() string {
	t, ok := m.store.Get(m.inspectID)
	if !ok {
		return m.fitBody(helpStyle.Render("Torrent no longer exists."))
	}
	width := max(20, m.width-2)
	lines := strings.Split(renderMarkdown(inspectorMarkdown(t), width), "\n")
	height := m.bodyHeight()
	maxScroll := max(0, len(lines)-height)
	if m.inspectScroll > maxScroll {
		m.inspectScroll = maxScroll
	}
	end := min(len(lines), m.inspectScroll+height)
	return m.fitBody(strings.Join(lines[m.inspectScroll:end], "\n"))
}

func (m *Model) renderHeader() string {
	up, down := m.store.Speeds()
	parts := []string{
		headerStyle.Render("tremote"),
		speedDownStyle.Render("↓ " + formatSpeed(down)),
		speedUpStyle.Render("↑ " + formatSpeed(up)),
	}
	if m.session != nil && m.session.AltSpeedEnabled {
		parts = append(parts, altSpeedStyle.Render(" turtle "))
	}
	chips := []string{
		torrents.ParseFilterMode(m.prefs.FilterMode).Label(),
		torrents.ParseSort(m.prefs.SortMode, m.prefs.SortDirection).Label(),
	}
	if group := m.prefs.FilterGroup; group != "" && group != torrents.GroupNone {
		chips = append(chips, sanitizer.Line(types.ReadableDomain(group)))
	}
	if text := m.prefs.FilterText; text != "" {
		chips = append(chips, "“"+text+"”")
	}
	for _, chip := range chips {
		parts = append(parts, filterChipStyle.Render(chip))
	}
	return truncateToWidth(strings.Join(parts, " "), m.width)
}

func (m *Model) renderStatus() string {
	counts := m.engine.Counts()
	summary := transfersLabel(counts.Visible, counts.Total)
	if n := len(m.engine.SelectedIDs()); n > 0 {
		summary += fmt.Sprintf(", %d selected", n)
	}
	if m.status == "" {
		return statusStyle.Render(summary)
	}
	style := statusStyle
	if m.statusError {
		style = statusErrorStyle
	}
	return style.Render(m.status) + statusStyle.Render("  "+summary)
}

func transfersLabel(visible, total int) string {
	noun := "Transfers"
	if total == 1 {
		noun = "Transfer"
	}
	if visible == total {
		return fmt.Sprintf("%d %s", total, noun)
	}
	return fmt.Sprintf("%d of %d %s", visible, total, noun)
}

func renderStatusLine(width int, help, status string) string {
	if width <= 0 {
		return help + " " + status
	}
	statusWidth := lipgloss.Width(status)
	if avail := width - statusWidth - statusLinePadding; lipgloss.Width(help) > avail {
		help = truncateToWidth(help, max(0, avail))
	}
	padding := width - lipgloss.Width(help) - statusWidth
	if padding < statusLinePadding {
		padding = statusLinePadding
	}
	return help + strings.Repeat(" ", padding) + status
}
