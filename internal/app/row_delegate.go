package app

import (
	"fmt"
	"io"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/list"
	"charm.land/lipgloss/v2"

	"tremote/internal/sanitizer"
	"tremote/internal/types"
)

const (
	compactStatsWidth = 34
	selectedMark      = "●"
	unselectedMark    = " "
)

// rowDelegate draws torrents in either a single compact line or a two-line
// full layout with a progress bar.
type rowDelegate struct {
	compact bool
}

func newRowDelegate(compact bool) rowDelegate {
	return rowDelegate{compact: compact}
}

func (d rowDelegate) Height() int {
	if d.compact {
		return 1
	}
	return 2
}

func (d rowDelegate) Spacing() int {
	return 0
}

func (d rowDelegate) Update(tea.Msg, *list.Model) tea.Cmd {
	return nil
}

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	row, ok := item.(*torrentRow)
	if !ok || row == nil || row.tor == nil {
		return
	}
	width := m.Width()
	if width <= 0 {
		width = 80
	}
	var lines []string
	if d.compact {
		lines = []string{renderCompactRow(row, width)}
	} else {
		lines = renderFullRow(row, width)
	}
	cursor := index == m.Index()
	for i, line := range lines {
		line = padRight(truncateToWidth(line, width), width)
		if cursor {
			line = cursorStyle.Render(line)
		}
		lines[i] = line
	}
	fmt.Fprint(w, strings.Join(lines, "\n"))
}

func renderCompactRow(row *torrentRow, width int) string {
	t := row.tor
	nameWidth := width - compactStatsWidth - 2
	if nameWidth < 10 {
		nameWidth = 10
	}
	stats := fmt.Sprintf("%6s  %s", formatPercent(t.Progress()), shortStatus(t))
	return rowMark(row) + " " +
		rowStateStyle(t).Render(fitName(sanitizer.Line(t.DisplayName()), nameWidth)) + " " +
		rowMetaStyle.Render(stats)
}

func renderFullRow(row *torrentRow, width int) []string {
	t := row.tor
	status := statusText(t)
	nameWidth := width - 2 - lipgloss.Width(status) - 1
	if nameWidth < 10 {
		nameWidth = 10
	}
	first := rowMark(row) + " " +
		rowNameStyle.Render(fitName(sanitizer.Line(t.DisplayName()), nameWidth)) + " " +
		rowStateStyle(t).Render(status)

	barWidth := width / 4
	if barWidth > 30 {
		barWidth = 30
	}
	second := "  " + progressBar(t.Progress(), barWidth) + " " + rowMetaStyle.Render(progressText(t))
	return []string{first, second}
}

func rowMark(row *torrentRow) string {
	if row.selected {
		return selectedMarkStyle.Render(selectedMark)
	}
	return unselectedMark
}

func rowStateStyle(t *types.Torrent) lipgloss.Style {
	switch {
	case t.HasError():
		return rowErrorStyle
	case t.IsStopped():
		return rowPausedStyle
	case t.IsChecking():
		return rowCheckStyle
	case t.IsSeeding():
		return rowSeedStyle
	case t.IsDownloading():
		return rowDownloadStyle
	default:
		return rowNameStyle
	}
}

// statusText is the right-hand summary on the first line of a full row.
func statusText(t *types.Torrent) string {
	if msg := t.ErrorMessage(); msg != "" {
		return "Error: " + sanitizer.Line(msg)
	}
	switch {
	case t.IsStopped():
		if t.Finished() {
			return "Finished"
		}
		return "Paused"
	case t.IsChecking():
		return fmt.Sprintf("Verifying %s", formatPercent(t.Progress()))
	case t.NeedsMetaData():
		return "Retrieving metadata"
	case t.IsQueued():
		return "Queued"
	}
	rates := fmt.Sprintf("↓ %s  ↑ %s", formatSpeed(t.DownloadRate()), formatSpeed(t.UploadRate()))
	if t.IsSeeding() {
		return "Seeding  " + rates
	}
	return rates
}

func shortStatus(t *types.Torrent) string {
	if t.HasError() {
		return "error"
	}
	if t.IsStopped() || t.IsChecking() || t.IsQueued() {
		return t.State().String()
	}
	return fmt.Sprintf("↓%s ↑%s", formatSpeed(t.DownloadRate()), formatSpeed(t.UploadRate()))
}

func progressText(t *types.Torrent) string {
	total := t.Size()
	if t.SizeWhenDone != nil {
		total = *t.SizeWhenDone
	}
	parts := []string{}
	if t.IsSeeding() || t.Finished() {
		uploaded := int64(0)
		if t.UploadedEver != nil {
			uploaded = *t.UploadedEver
		}
		parts = append(parts, fmt.Sprintf("%s, uploaded %s (ratio %s)", formatBytes(total), formatBytes(uploaded), formatRatio(t.Ratio())))
	} else {
		have := int64(float64(total) * t.Progress())
		parts = append(parts, fmt.Sprintf("%s of %s (%s)", formatBytes(have), formatBytes(total), formatPercent(t.Progress())))
	}
	if t.IsDownloading() && t.ETA != nil {
		parts = append(parts, "ETA "+formatETA(*t.ETA))
	}
	if t.PeersConnected != nil && !t.IsStopped() {
		parts = append(parts, fmt.Sprintf("%d peers", *t.PeersConnected))
	}
	return strings.Join(parts, " • ")
}
