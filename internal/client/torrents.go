package client

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"tremote/internal/logging"
	"tremote/internal/types"
)

// TorrentGet fetches fields for ids, or for every torrent when ids is empty.
func (c *Client) TorrentGet(ctx context.Context, ids []int, fields []string) (*TorrentGetResult, error) {
	var sel any
	if len(ids) > 0 {
		sel = ids
	}
	return c.torrentGet(ctx, sel, fields)
}

// TorrentGetRecent fetches torrents changed since the previous poll together
// with the ids removed since then.
func (c *Client) TorrentGetRecent(ctx context.Context, fields []string) (*TorrentGetResult, error) {
	return c.torrentGet(ctx, RecentlyActive, fields)
}

func (c *Client) torrentGet(ctx context.Context, ids any, fields []string) (*TorrentGetResult, error) {
	if len(fields) == 0 {
		fields = types.WithID(types.StatsFields)
	}
	req := torrentGetRequest{Fields: fields, IDs: ids, Format: "table"}
	var resp torrentGetResponse
	if err := c.call(ctx, "torrent-get", req, &resp); err != nil {
		return nil, err
	}
	rows, skipped, err := decodeTorrentRows(resp.Torrents)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Warn("torrent-get entries skipped", logging.F("skipped", skipped), logging.F("kept", len(rows)))
	}
	return &TorrentGetResult{Torrents: rows, Removed: resp.Removed, Skipped: skipped}, nil
}

func (c *Client) TorrentStart(ctx context.Context, ids []int) error {
	return c.action(ctx, "torrent-start", ids)
}

func (c *Client) TorrentStartNow(ctx context.Context, ids []int) error {
	return c.action(ctx, "torrent-start-now", ids)
}

func (c *Client) TorrentStop(ctx context.Context, ids []int) error {
	return c.action(ctx, "torrent-stop", ids)
}

func (c *Client) TorrentVerify(ctx context.Context, ids []int) error {
	return c.action(ctx, "torrent-verify", ids)
}

func (c *Client) TorrentReannounce(ctx context.Context, ids []int) error {
	return c.action(ctx, "torrent-reannounce", ids)
}

func (c *Client) TorrentRemove(ctx context.Context, ids []int, deleteData bool) error {
	if len(ids) == 0 {
		return errors.New("ids are required")
	}
	return c.call(ctx, "torrent-remove", removeRequest{IDs: ids, DeleteLocalData: deleteData}, nil)
}

func (c *Client) TorrentSetLocation(ctx context.Context, ids []int, location string, move bool) error {
	if len(ids) == 0 {
		return errors.New("ids are required")
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return errors.New("location is required")
	}
	return c.call(ctx, "torrent-set-location", setLocationRequest{IDs: ids, Location: location, Move: move}, nil)
}

func (c *Client) TorrentRenamePath(ctx context.Context, id int, path, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	return c.call(ctx, "torrent-rename-path", renamePathRequest{IDs: []int{id}, Path: path, Name: name}, nil)
}

func (c *Client) QueueMove(ctx context.Context, dir QueueDirection, ids []int) error {
	method, err := dir.method()
	if err != nil {
		return err
	}
	return c.action(ctx, method, ids)
}

func (c *Client) TorrentAdd(ctx context.Context, req AddRequest) (*AddedTorrent, error) {
	payload := addRequest{
		Metainfo:    req.Metainfo,
		Paused:      req.Paused,
		DownloadDir: strings.TrimSpace(req.DownloadDir),
	}
	if len(req.Metainfo) == 0 {
		filename := NormalizeAddURL(req.URL)
		if filename == "" {
			return nil, errors.New("url or metainfo is required")
		}
		payload.Filename = filename
	}
	var resp addResponse
	if err := c.call(ctx, "torrent-add", payload, &resp); err != nil {
		return nil, err
	}
	switch {
	case resp.Added != nil:
		return resp.Added, nil
	case resp.Duplicate != nil:
		resp.Duplicate.Duplicate = true
		return resp.Duplicate, nil
	default:
		return nil, errors.New("torrent-add: empty response")
	}
}

// NormalizeAddURL turns a bare 40 character info hash into a magnet link and
// leaves everything else untouched.
func NormalizeAddURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) == 40 {
		if _, err := hex.DecodeString(raw); err == nil {
			return "magnet:?xt=urn:btih:" + strings.ToLower(raw)
		}
	}
	return raw
}

func (c *Client) action(ctx context.Context, method string, ids []int) error {
	if len(ids) == 0 {
		return errors.New("ids are required")
	}
	return c.call(ctx, method, idsRequest{IDs: ids}, nil)
}
