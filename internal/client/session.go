package client

import (
	"context"
	"errors"
	"strings"

	"tremote/internal/types"
)

func (c *Client) SessionGet(ctx context.Context) (*types.Session, error) {
	var session types.Session
	if err := c.call(ctx, "session-get", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionSet changes daemon settings; keys use the daemon's dashed names.
func (c *Client) SessionSet(ctx context.Context, args map[string]any) error {
	if len(args) == 0 {
		return errors.New("no settings to change")
	}
	return c.call(ctx, "session-set", args, nil)
}

func (c *Client) SetAltSpeed(ctx context.Context, enabled bool) error {
	return c.SessionSet(ctx, map[string]any{"alt-speed-enabled": enabled})
}

func (c *Client) SessionStats(ctx context.Context) (*types.SessionStats, error) {
	var stats types.SessionStats
	if err := c.call(ctx, "session-stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) FreeSpace(ctx context.Context, path string) (*types.FreeSpace, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("path is required")
	}
	var space types.FreeSpace
	if err := c.call(ctx, "free-space", freeSpaceRequest{Path: path}, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

func (c *Client) PortTest(ctx context.Context) (bool, error) {
	var resp portTestResponse
	if err := c.call(ctx, "port-test", nil, &resp); err != nil {
		return false, err
	}
	return resp.PortIsOpen, nil
}

func (c *Client) BlocklistUpdate(ctx context.Context) (int, error) {
	var resp blocklistUpdateResponse
	if err := c.call(ctx, "blocklist-update", nil, &resp); err != nil {
		return 0, err
	}
	return resp.BlocklistSize, nil
}
