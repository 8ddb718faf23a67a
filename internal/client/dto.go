package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RecentlyActive asks torrent-get for torrents changed since the last poll
// plus the ids removed in the meantime.
const RecentlyActive = "recently-active"

type torrentGetRequest struct {
	Fields []string `json:"fields"`
	IDs    any      `json:"ids,omitempty"`
	Format string   `json:"format,omitempty"`
}

type torrentGetResponse struct {
	Torrents json.RawMessage `json:"torrents"`
	Removed  []int           `json:"removed"`
}

type TorrentGetResult struct {
	Torrents []map[string]json.RawMessage
	Removed  []int
	// Skipped counts response entries that were not an object or row.
	Skipped int
}

type idsRequest struct {
	IDs []int `json:"ids"`
}

type removeRequest struct {
	IDs             []int `json:"ids"`
	DeleteLocalData bool  `json:"delete-local-data"`
}

type setLocationRequest struct {
	IDs      []int  `json:"ids"`
	Location string `json:"location"`
	Move     bool   `json:"move"`
}

type renamePathRequest struct {
	IDs  []int  `json:"ids"`
	Path string `json:"path"`
	Name string `json:"name"`
}

type AddRequest struct {
	// URL is an http(s) URL, a magnet link or a bare info hash.
	URL         string
	Metainfo    []byte
	Paused      bool
	DownloadDir string
}

type addRequest struct {
	Filename    string `json:"filename,omitempty"`
	Metainfo    []byte `json:"metainfo,omitempty"`
	Paused      bool   `json:"paused,omitempty"`
	DownloadDir string `json:"download-dir,omitempty"`
}

type AddedTorrent struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	HashString string `json:"hashString"`
	Duplicate  bool   `json:"-"`
}

type addResponse struct {
	Added     *AddedTorrent `json:"torrent-added"`
	Duplicate *AddedTorrent `json:"torrent-duplicate"`
}

type freeSpaceRequest struct {
	Path string `json:"path"`
}

type portTestResponse struct {
	PortIsOpen bool `json:"port-is-open"`
}

type blocklistUpdateResponse struct {
	BlocklistSize int `json:"blocklist-size"`
}

type QueueDirection string

const (
	QueueTop    QueueDirection = "top"
	QueueUp     QueueDirection = "up"
	QueueDown   QueueDirection = "down"
	QueueBottom QueueDirection = "bottom"
)

func (d QueueDirection) method() (string, error) {
	switch d {
	case QueueTop, QueueUp, QueueDown, QueueBottom:
		return "queue-move-" + string(d), nil
	default:
		return "", fmt.Errorf("unknown queue direction %q", d)
	}
}

// decodeTorrentRows accepts both the object format and the compact table
// format, where the first row names the columns. Entries of the wrong shape
// are skipped and counted; only an unreadable list or header is an error.
func decodeTorrentRows(raw json.RawMessage) ([]map[string]json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, 0, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}
	first := bytes.TrimSpace(rows[0])
	if len(first) == 0 || first[0] != '[' {
		out := make([]map[string]json.RawMessage, 0, len(rows))
		skipped := 0
		for _, row := range rows {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(row, &fields); err != nil || fields == nil {
				skipped++
				continue
			}
			out = append(out, fields)
		}
		return out, skipped, nil
	}

	var columns []string
	if err := json.Unmarshal(first, &columns); err != nil {
		return nil, 0, fmt.Errorf("table header: %w", err)
	}
	if len(columns) == 0 {
		return nil, 0, errors.New("table header is empty")
	}
	out := make([]map[string]json.RawMessage, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		var values []json.RawMessage
		if err := json.Unmarshal(row, &values); err != nil || values == nil {
			skipped++
			continue
		}
		fields := make(map[string]json.RawMessage, len(columns))
		for j, column := range columns {
			if j >= len(values) {
				break
			}
			fields[column] = values[j]
		}
		out = append(out, fields)
	}
	return out, skipped, nil
}
