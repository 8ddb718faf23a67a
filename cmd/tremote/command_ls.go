package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"tremote/internal/client"
	"tremote/internal/reconcile"
	"tremote/internal/torrents"
	"tremote/internal/types"
)

type ListCommand struct {
	env commandEnv
}

func NewListCommand(env commandEnv) *ListCommand {
	return &ListCommand{env: env}
}

func (c *ListCommand) Run(args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	filter := fs.String("filter", string(torrents.FilterAll), "state filter: "+joinModes())
	sortKey := fs.String("sort", string(torrents.SortByQueue), "sort key: "+joinSortKeys())
	reverse := fs.Bool("reverse", false, "reverse the sort order")
	search := fs.String("search", "", "only names containing this text")
	group := fs.String("group", "", "only torrents announcing to this tracker domain")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode := torrents.FilterMode(strings.ToLower(strings.TrimSpace(*filter)))
	if !slices.Contains(torrents.FilterModes(), mode) {
		return fmt.Errorf("unknown filter %q", *filter)
	}
	key := torrents.SortKey(strings.ToLower(strings.TrimSpace(*sortKey)))
	if !slices.Contains(torrents.SortKeys(), key) {
		return fmt.Errorf("unknown sort key %q", *sortKey)
	}
	params := reconcile.Params{
		Filter: torrents.Filter{Mode: mode, Text: *search, Group: strings.TrimSpace(*group)},
		Sort:   torrents.Sort{Key: key, Direction: torrents.Ascending},
	}
	if *reverse {
		params.Sort.Direction = torrents.Descending
	}

	ctx, stop := commandContext()
	defer stop()
	api, _, err := c.env.connect()
	if err != nil {
		return err
	}
	result, err := api.TorrentGet(ctx, nil, types.WithID(types.MetadataFields, types.StatsFields))
	if err != nil {
		return err
	}

	list, err := orderTorrents(result, params)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeTorrentsJSON(c.env.stdout, list)
	}
	printTorrents(c.env.stdout, list)
	return nil
}

// orderTorrents runs one reconciliation pass against a headless display and
// returns the visible torrents in display order.
func orderTorrents(result *client.TorrentGetResult, params reconcile.Params) ([]*types.Torrent, error) {
	itemStore := torrents.NewStore(nil)
	itemStore.ApplyBatch(result.Torrents, result.Removed)
	display := &tableDisplay{}
	engine := reconcile.NewEngine(itemStore, display, nil)
	pass := engine.Reconcile(params, false)
	return display.torrents(), errors.Join(pass.Errors...)
}

func joinModes() string {
	modes := torrents.FilterModes()
	out := make([]string, 0, len(modes))
	for _, mode := range modes {
		out = append(out, string(mode))
	}
	return strings.Join(out, "|")
}

func joinSortKeys() string {
	keys := torrents.SortKeys()
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, string(key))
	}
	return strings.Join(out, "|")
}

type torrentJSON struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Size     int64   `json:"size"`
	Down     int64   `json:"rate_download"`
	Up       int64   `json:"rate_upload"`
	Ratio    float64 `json:"ratio"`
	Error    string  `json:"error,omitempty"`
}

func writeTorrentsJSON(out io.Writer, list []*types.Torrent) error {
	rows := make([]torrentJSON, 0, len(list))
	for _, t := range list {
		rows = append(rows, torrentJSON{
			ID:       t.ID,
			Name:     t.DisplayName(),
			Status:   t.State().String(),
			Progress: t.Progress(),
			Size:     t.Size(),
			Down:     t.DownloadRate(),
			Up:       t.UploadRate(),
			Ratio:    t.Ratio(),
			Error:    t.ErrorMessage(),
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// tableDisplay keeps handles in rendered order without drawing anything.
type tableDisplay struct {
	rows []*tableRow
}

type tableRow struct {
	tor *types.Torrent
}

func (d *tableDisplay) Create(t *types.Torrent) (reconcile.Handle, error) {
	if t == nil {
		return nil, errors.New("nil torrent")
	}
	return &tableRow{tor: t}, nil
}

func (d *tableDisplay) Destroy(h reconcile.Handle) {
	d.Detach(h)
}

func (d *tableDisplay) Detach(h reconcile.Handle) {
	row, _ := h.(*tableRow)
	if idx := slices.Index(d.rows, row); idx >= 0 {
		d.rows = slices.Delete(d.rows, idx, idx+1)
	}
}

func (d *tableDisplay) Insert(h reconcile.Handle, before reconcile.Handle) {
	row, ok := h.(*tableRow)
	if !ok {
		return
	}
	d.Detach(row)
	next, _ := before.(*tableRow)
	if idx := slices.Index(d.rows, next); next != nil && idx >= 0 {
		d.rows = slices.Insert(d.rows, idx, row)
		return
	}
	d.rows = append(d.rows, row)
}

func (d *tableDisplay) Refresh(h reconcile.Handle, t *types.Torrent) {
	if row, ok := h.(*tableRow); ok {
		row.tor = t
	}
}

func (d *tableDisplay) torrents() []*types.Torrent {
	out := make([]*types.Torrent, 0, len(d.rows))
	for _, row := range d.rows {
		out = append(out, row.tor)
	}
	return out
}
