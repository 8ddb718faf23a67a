package app

import (
	"context"

	"tremote/internal/client"
	"tremote/internal/types"
)

type TorrentAPI interface {
	TorrentGet(ctx context.Context, ids []int, fields []string) (*client.TorrentGetResult, error)
	TorrentGetRecent(ctx context.Context, fields []string) (*client.TorrentGetResult, error)
	TorrentStart(ctx context.Context, ids []int) error
	TorrentStartNow(ctx context.Context, ids []int) error
	TorrentStop(ctx context.Context, ids []int) error
	TorrentVerify(ctx context.Context, ids []int) error
	TorrentReannounce(ctx context.Context, ids []int) error
	TorrentRemove(ctx context.Context, ids []int, deleteData bool) error
	QueueMove(ctx context.Context, dir client.QueueDirection, ids []int) error
}

type SessionAPI interface {
	SessionGet(ctx context.Context) (*types.Session, error)
	SessionStats(ctx context.Context) (*types.SessionStats, error)
	SetAltSpeed(ctx context.Context, enabled bool) error
}

// DaemonAPI is everything the UI needs from the daemon. *client.Client
// satisfies it.
type DaemonAPI interface {
	TorrentAPI
	SessionAPI
}

var _ DaemonAPI = (*client.Client)(nil)
