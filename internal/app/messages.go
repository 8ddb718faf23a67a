package app

import (
	"time"

	"tremote/internal/client"
	"tremote/internal/config"
	"tremote/internal/types"
)

type fetchKind int

const (
	// fetchInitial loads every torrent with metadata and stats.
	fetchInitial fetchKind = iota
	// fetchRecent polls recently-active torrents and removals.
	fetchRecent
	// fetchInfo loads metadata for specific ids.
	fetchInfo
	// fetchDetails loads inspector fields for one torrent.
	fetchDetails
)

func (k fetchKind) String() string {
	switch k {
	case fetchInitial:
		return "initial"
	case fetchRecent:
		return "recent"
	case fetchInfo:
		return "info"
	case fetchDetails:
		return "details"
	default:
		return "unknown"
	}
}

type torrentsMsg struct {
	kind   fetchKind
	ids    []int
	result *client.TorrentGetResult
	err    error
}

type sessionMsg struct {
	session *types.Session
	stats   *types.SessionStats
	err     error
}

type actionMsg struct {
	action string
	ids    []int
	err    error
}

type altSpeedMsg struct {
	enabled bool
	err     error
}

// reconcileMsg is delivered by the scheduler once its quiet period elapses.
type reconcileMsg struct {
	full bool
}

type pollTickMsg time.Time

type sessionTickMsg time.Time

type configReloadedMsg struct {
	cfg config.CoreConfig
	err error
}

type prefsSavedMsg struct {
	err error
}

type clipboardMsg struct {
	label string
	err   error
}

type clearStatusMsg struct {
	seq int
}
