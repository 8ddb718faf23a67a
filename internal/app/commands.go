package app

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"tremote/internal/client"
	"tremote/internal/store"
	"tremote/internal/types"
)

const (
	requestTimeout    = 15 * time.Second
	prefsSaveTimeout  = 2 * time.Second
	clipboardTimeout  = 3 * time.Second
	sessionInterval   = 8 * time.Second
	statusMessageLife = 4 * time.Second
)

func fieldsFor(kind fetchKind) []string {
	switch kind {
	case fetchRecent:
		return types.WithID(types.StatsFields)
	case fetchDetails:
		return types.WithID(types.MetadataFields, types.StatsFields, types.DetailFields)
	default:
		return types.WithID(types.MetadataFields, types.StatsFields)
	}
}

func fetchTorrentsCmd(api TorrentAPI, kind fetchKind, ids []int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var (
			result *client.TorrentGetResult
			err    error
		)
		switch kind {
		case fetchRecent:
			result, err = api.TorrentGetRecent(ctx, fieldsFor(kind))
		case fetchInitial:
			result, err = api.TorrentGet(ctx, nil, fieldsFor(kind))
		default:
			if len(ids) == 0 {
				return torrentsMsg{kind: kind, err: errors.New("no torrents requested")}
			}
			result, err = api.TorrentGet(ctx, ids, fieldsFor(kind))
		}
		return torrentsMsg{kind: kind, ids: ids, result: result, err: err}
	}
}

func fetchSessionCmd(api SessionAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		session, err := api.SessionGet(ctx)
		if err != nil {
			return sessionMsg{err: err}
		}
		stats, err := api.SessionStats(ctx)
		return sessionMsg{session: session, stats: stats, err: err}
	}
}

type torrentAction struct {
	name string
	verb string
	run  func(ctx context.Context, api TorrentAPI, ids []int) error
}

var (
	actionPause = torrentAction{name: "pause", verb: "paused", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.TorrentStop(ctx, ids)
	}}
	actionResume = torrentAction{name: "resume", verb: "resumed", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.TorrentStart(ctx, ids)
	}}
	actionResumeNow = torrentAction{name: "resume now", verb: "started", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.TorrentStartNow(ctx, ids)
	}}
	actionVerify = torrentAction{name: "verify", verb: "verifying", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.TorrentVerify(ctx, ids)
	}}
	actionReannounce = torrentAction{name: "reannounce", verb: "reannounced", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.TorrentReannounce(ctx, ids)
	}}
	actionRemove = torrentAction{name: "remove", verb: "removed", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.TorrentRemove(ctx, ids, false)
	}}
	actionRemoveData = torrentAction{name: "remove with data", verb: "removed with data", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.TorrentRemove(ctx, ids, true)
	}}
	actionQueueUp = torrentAction{name: "queue up", verb: "moved up", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.QueueMove(ctx, client.QueueUp, ids)
	}}
	actionQueueDown = torrentAction{name: "queue down", verb: "moved down", run: func(ctx context.Context, api TorrentAPI, ids []int) error {
		return api.QueueMove(ctx, client.QueueDown, ids)
	}}
)

func torrentActionCmd(api TorrentAPI, action torrentAction, ids []int) tea.Cmd {
	ids = append([]int(nil), ids...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := action.run(ctx, api, ids)
		return actionMsg{action: action.verb, ids: ids, err: err}
	}
}

func setAltSpeedCmd(api SessionAPI, enabled bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return altSpeedMsg{enabled: enabled, err: api.SetAltSpeed(ctx, enabled)}
	}
}

func savePrefsCmd(prefsStore store.PrefsStore, profile string, prefs types.Prefs) tea.Cmd {
	if prefsStore == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), prefsSaveTimeout)
		defer cancel()
		return prefsSavedMsg{err: prefsStore.Save(ctx, profile, prefs)}
	}
}

func copyToClipboardCmd(service clipboardService, text, label string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
		defer cancel()
		_, err := service.Copy(ctx, text)
		return clipboardMsg{label: label, err: err}
	}
}

func pollTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func sessionTickCmd() tea.Cmd {
	return tea.Tick(sessionInterval, func(t time.Time) tea.Msg {
		return sessionTickMsg(t)
	})
}

func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusMessageLife, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
