package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"tremote/internal/sanitizer"
	"tremote/internal/types"
)

const version = "dev"

var errNoIDs = errors.New("at least one torrent id (or \"all\") is required")

// resolveIDs parses torrent ids from positional args. "all" expands to every
// torrent the daemon knows about.
func resolveIDs(ctx context.Context, client commandClient, args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errNoIDs
	}
	if len(args) == 1 && strings.EqualFold(strings.TrimSpace(args[0]), "all") {
		result, err := client.TorrentGet(ctx, nil, []string{types.FieldID})
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(result.Torrents))
		for _, row := range result.Torrents {
			var id int
			if err := json.Unmarshal(row[types.FieldID], &id); err != nil {
				return nil, fmt.Errorf("decode torrent id: %w", err)
			}
			if id > 0 {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil, errors.New("no torrents")
		}
		return ids, nil
	}
	return parseIDs(args)
}

func parseIDs(args []string) ([]int, error) {
	seen := make(map[int]struct{}, len(args))
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid torrent id %q", part)
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errNoIDs
	}
	return ids, nil
}

func pluralTorrents(n int) string {
	if n == 1 {
		return "1 torrent"
	}
	return fmt.Sprintf("%d torrents", n)
}

func printTorrents(output io.Writer, list []*types.Torrent) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tDONE\tSIZE\tDOWN\tUP\tRATIO\tSTATUS\tNAME")
	for _, t := range list {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			percentCell(t.Progress()),
			bytesCell(t.Size()),
			rateCell(t.DownloadRate()),
			rateCell(t.UploadRate()),
			ratioCell(t.Ratio()),
			statusCell(t),
			sanitizer.Line(t.DisplayName()),
		)
	}
	_ = writer.Flush()
}

func percentCell(progress float64) string {
	pct := progress * 100
	if pct >= 100 {
		return "100%"
	}
	return fmt.Sprintf("%.1f%%", float64(int(pct*10))/10)
}

func bytesCell(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

func rateCell(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n)) + "/s"
}

func ratioCell(ratio float64) string {
	switch {
	case ratio == types.RatioInfinite:
		return "Inf"
	case ratio < 0:
		return "None"
	default:
		return strconv.FormatFloat(ratio, 'f', 2, 64)
	}
}

func statusCell(t *types.Torrent) string {
	if t.HasError() {
		return "Error"
	}
	return t.State().String()
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
