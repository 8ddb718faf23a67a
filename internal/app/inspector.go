package app

import (
	"fmt"
	"strings"
	"time"

	"tremote/internal/sanitizer"
	"tremote/internal/types"
)

// inspectorMarkdown renders the details panel for one torrent as markdown.
func inspectorMarkdown(t *types.Torrent) string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(t.DisplayName()))
	if msg := t.ErrorMessage(); msg != "" {
		fmt.Fprintf(&b, "> Error: %s\n\n", escapeMarkdown(msg))
	}

	b.WriteString("## Activity\n\n")
	b.WriteString("| | |\n|---|---|\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "| %s | %s |\n", label, value)
	}
	row("State", t.State().String())
	row("Progress", formatPercent(t.Progress()))
	if t.IsDownloading() && t.ETA != nil {
		row("ETA", formatETA(*t.ETA))
	}
	row("Download", formatSpeed(t.DownloadRate()))
	row("Upload", formatSpeed(t.UploadRate()))
	if t.DownloadedEver != nil {
		row("Downloaded", formatBytes(*t.DownloadedEver))
	}
	if t.UploadedEver != nil {
		row("Uploaded", formatBytes(*t.UploadedEver))
	}
	if t.UploadRatio != nil {
		row("Ratio", formatRatio(*t.UploadRatio))
	}
	if t.PeersConnected != nil {
		row("Peers", fmt.Sprintf("%d connected, %d sending, %d receiving",
			*t.PeersConnected, derefInt(t.PeersSendingToUs), derefInt(t.PeersGettingFromUs)))
	}
	if t.QueuePosition != nil {
		row("Queue", fmt.Sprintf("#%d", *t.QueuePosition+1))
	}

	b.WriteString("\n## Details\n\n")
	b.WriteString("| | |\n|---|---|\n")
	if t.TotalSize != nil {
		row("Size", formatBytes(*t.TotalSize))
	}
	if t.DownloadDir != nil {
		row("Location", escapeMarkdown(*t.DownloadDir))
	}
	row("Hash", t.Hash())
	if t.IsPrivate != nil && *t.IsPrivate {
		row("Privacy", "private")
	}
	if t.AddedDate != nil {
		row("Added", formatUnix(*t.AddedDate))
	}
	if t.DateCreated != nil {
		created := formatUnix(*t.DateCreated)
		if t.Creator != nil && *t.Creator != "" {
			created += " by " + escapeMarkdown(*t.Creator)
		}
		row("Created", created)
	}
	if len(t.Labels) > 0 {
		row("Labels", escapeMarkdown(strings.Join(t.Labels, ", ")))
	}

	if t.Comment != nil && strings.TrimSpace(*t.Comment) != "" {
		fmt.Fprintf(&b, "\n## Comment\n\n%s\n", escapeMarkdown(*t.Comment))
	}
	if len(t.Trackers) > 0 {
		b.WriteString("\n## Trackers\n\n")
		for _, tracker := range t.Trackers {
			fmt.Fprintf(&b, "- tier %d: `%s`\n", tracker.Tier+1, strings.ReplaceAll(sanitizer.Line(tracker.Announce), "`", ""))
		}
	}
	return b.String()
}

func formatUnix(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).Local().Format("2006-01-02 15:04")
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
