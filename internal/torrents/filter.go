package torrents

import (
	"strings"

	"tremote/internal/types"
)

type FilterMode string

const (
	FilterAll         FilterMode = "all"
	FilterActive      FilterMode = "active"
	FilterDownloading FilterMode = "downloading"
	FilterSeeding     FilterMode = "seeding"
	FilterPaused      FilterMode = "paused"
	FilterFinished    FilterMode = "finished"
	FilterVerifying   FilterMode = "verifying"
	FilterError       FilterMode = "error"
)

// GroupNone disables group filtering.
const GroupNone = "none"

var filterModes = []FilterMode{
	FilterAll,
	FilterActive,
	FilterDownloading,
	FilterSeeding,
	FilterPaused,
	FilterFinished,
	FilterVerifying,
	FilterError,
}

func FilterModes() []FilterMode {
	return append([]FilterMode(nil), filterModes...)
}

func ParseFilterMode(raw string) FilterMode {
	mode := FilterMode(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range filterModes {
		if known == mode {
			return mode
		}
	}
	return FilterAll
}

func CycleFilterMode(current FilterMode, step int) FilterMode {
	current = ParseFilterMode(string(current))
	idx := 0
	for i, mode := range filterModes {
		if mode == current {
			idx = i
			break
		}
	}
	n := len(filterModes)
	idx = ((idx+step)%n + n) % n
	return filterModes[idx]
}

func (m FilterMode) Label() string {
	if m == "" {
		return "All"
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

type Filter struct {
	Mode  FilterMode
	Text  string
	Group string
}

// Matches is total: a nil torrent never matches, missing fields use the
// torrent's zero defaults.
func (f Filter) Matches(t *types.Torrent) bool {
	if t == nil {
		return false
	}
	if !f.matchesMode(t) {
		return false
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		if !strings.Contains(t.CollatedName(), strings.ToLower(text)) {
			return false
		}
	}
	if group := strings.TrimSpace(f.Group); group != "" && group != GroupNone {
		found := false
		for _, candidate := range t.Groups() {
			if candidate == group {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f Filter) matchesMode(t *types.Torrent) bool {
	switch ParseFilterMode(string(f.Mode)) {
	case FilterActive:
		return t.IsActive()
	case FilterDownloading:
		return t.IsDownloading()
	case FilterSeeding:
		return t.IsSeeding()
	case FilterPaused:
		return t.IsStopped()
	case FilterFinished:
		return t.Finished()
	case FilterVerifying:
		return t.IsChecking()
	case FilterError:
		return t.HasError()
	default:
		return true
	}
}
