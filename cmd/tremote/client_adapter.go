package main

import (
	"context"

	"tremote/internal/app"
	"tremote/internal/client"
	"tremote/internal/config"
	"tremote/internal/logging"
	"tremote/internal/types"
)

type clientFactory func(cfg config.CoreConfig, logger logging.Logger) (commandClient, error)

// commandClient is the daemon surface used by the CLI. The UI half is
// shared with the terminal UI so the same client drives both.
type commandClient interface {
	app.DaemonAPI
	TorrentAdd(ctx context.Context, req client.AddRequest) (*client.AddedTorrent, error)
	FreeSpace(ctx context.Context, path string) (*types.FreeSpace, error)
	PortTest(ctx context.Context) (bool, error)
	BlocklistUpdate(ctx context.Context) (int, error)
}

var _ commandClient = (*client.Client)(nil)

func newDaemonClient(cfg config.CoreConfig, logger logging.Logger) (commandClient, error) {
	c := client.New(cfg)
	c.SetLogger(logger.With(logging.F("component", "rpc")))
	return c, nil
}
