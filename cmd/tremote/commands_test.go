package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tremote/internal/app"
	"tremote/internal/client"
	"tremote/internal/config"
	"tremote/internal/logging"
	"tremote/internal/reconcile"
	"tremote/internal/torrents"
	"tremote/internal/types"
)

func testEnv(fake *fakeCommandClient) (commandEnv, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	return commandEnv{
		stdout:     stdout,
		stderr:     &bytes.Buffer{},
		loadConfig: func() (config.CoreConfig, error) { return config.DefaultCoreConfig(), nil },
		newClient:  fixedFactory(fake),
	}, stdout
}

func sampleRows(t *testing.T) []map[string]json.RawMessage {
	t.Helper()
	raw := []string{
		`{"id":1,"name":"ubuntu-24.04.iso","status":4,"percentDone":0.5,"totalSize":4700000000,"rateDownload":2500000,"uploadRatio":0.1}`,
		`{"id":2,"name":"archlinux.iso","status":0,"percentDone":1,"totalSize":1200000000,"uploadRatio":-1}`,
		`{"id":3,"name":"debian-12.iso","status":6,"percentDone":1,"totalSize":650000000,"rateUpload":1000,"uploadRatio":-2}`,
	}
	out := make([]map[string]json.RawMessage, 0, len(raw))
	for _, r := range raw {
		var m map[string]json.RawMessage
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func TestListCommandFiltersAndSorts(t *testing.T) {
	fake := &fakeCommandClient{getResp: &client.TorrentGetResult{Torrents: sampleRows(t)}}
	env, stdout := testEnv(fake)

	if err := NewListCommand(env).Run([]string{"--filter", "active", "--sort", "name"}); err != nil {
		t.Fatalf("ls: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", stdout.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "debian-12.iso") || !strings.Contains(lines[2], "ubuntu-24.04.iso") {
		t.Fatalf("unexpected listing:\n%s", stdout.String())
	}
	if !strings.Contains(lines[1], "Inf") || !strings.Contains(lines[2], "50.0%") {
		t.Fatalf("expected ratio and progress cells:\n%s", stdout.String())
	}
	if len(fake.getCalls) != 1 || len(fake.getCalls[0]) != 0 {
		t.Fatalf("expected one torrent-get for all ids, got %v", fake.getCalls)
	}
}

func TestListCommandReverseAndJSON(t *testing.T) {
	fake := &fakeCommandClient{getResp: &client.TorrentGetResult{Torrents: sampleRows(t)}}
	env, stdout := testEnv(fake)

	if err := NewListCommand(env).Run([]string{"--sort", "name", "--reverse", "--json"}); err != nil {
		t.Fatalf("ls: %v", err)
	}
	var rows []torrentJSON
	if err := json.Unmarshal(stdout.Bytes(), &rows); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	var ids []int
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	if !slices.Equal(ids, []int{1, 3, 2}) {
		t.Fatalf("expected reverse name order, got %v", ids)
	}
}

func TestListCommandRejectsUnknownFilter(t *testing.T) {
	env, _ := testEnv(&fakeCommandClient{})
	err := NewListCommand(env).Run([]string{"--filter", "sleeping"})
	if err == nil || !strings.Contains(err.Error(), "unknown filter") {
		t.Fatalf("expected filter validation error, got %v", err)
	}
}

func TestRemoveCommandPassesDeleteData(t *testing.T) {
	fake := &fakeCommandClient{}
	env, stdout := testEnv(fake)

	if err := NewRemoveCommand(env).Run([]string{"--delete-data", "3,5", "5"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "remove:true:[3 5]" {
		t.Fatalf("unexpected calls: %v", fake.calls)
	}
	if got := stdout.String(); got != "2 torrents removed\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestStartCommandAllExpandsIDs(t *testing.T) {
	fake := &fakeCommandClient{getResp: &client.TorrentGetResult{Torrents: sampleRows(t)}}
	env, _ := testEnv(fake)

	if err := NewStartCommand(env).Run([]string{"--now", "all"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "start-now:[1 2 3]" {
		t.Fatalf("unexpected calls: %v", fake.calls)
	}
}

func TestActionCommandRequiresIDs(t *testing.T) {
	fake := &fakeCommandClient{}
	env, _ := testEnv(fake)
	if err := NewStopCommand(env).Run(nil); !errors.Is(err, errNoIDs) {
		t.Fatalf("expected missing id error, got %v", err)
	}
	if err := NewVerifyCommand(env).Run([]string{"x1"}); err == nil {
		t.Fatalf("expected invalid id error")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no daemon calls, got %v", fake.calls)
	}
}

func TestQueueCommand(t *testing.T) {
	fake := &fakeCommandClient{}
	env, _ := testEnv(fake)

	if err := NewQueueCommand(env).Run([]string{"top", "4"}); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "queue:top:[4]" {
		t.Fatalf("unexpected calls: %v", fake.calls)
	}
	if err := NewQueueCommand(env).Run([]string{"sideways", "4"}); err == nil {
		t.Fatalf("expected direction validation error")
	}
}

func TestAddCommandReportsDuplicates(t *testing.T) {
	fake := &fakeCommandClient{
		addResp: &client.AddedTorrent{ID: 9, Name: "debian-12.iso", Duplicate: true},
	}
	env, stdout := testEnv(fake)

	if err := NewAddCommand(env).Run([]string{"--paused", "--dir", "/srv", "magnet:?xt=urn:btih:abc"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(fake.addRequests) != 1 {
		t.Fatalf("expected one add request, got %d", len(fake.addRequests))
	}
	req := fake.addRequests[0]
	if req.URL != "magnet:?xt=urn:btih:abc" || !req.Paused || req.DownloadDir != "/srv" {
		t.Fatalf("unexpected request: %#v", req)
	}
	if !strings.Contains(stdout.String(), "already added") {
		t.Fatalf("expected duplicate note, got %q", stdout.String())
	}
}

func TestSessionCommandPrintsReport(t *testing.T) {
	fake := &fakeCommandClient{
		session: &types.Session{Version: "4.0.5", RPCVersion: 17, DownloadDir: "/srv/torrents", AltSpeedEnabled: true},
		stats:   &types.SessionStats{TorrentCount: 3, ActiveTorrentCount: 2, PausedTorrentCount: 1},
		space:   &types.FreeSpace{Path: "/srv/torrents", SizeBytes: 5_000_000_000},
	}
	env, stdout := testEnv(fake)

	if err := NewSessionCommand(env).Run(nil); err != nil {
		t.Fatalf("session: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"4.0.5", "/srv/torrents", "5.0 GB", "3 (2 active, 1 paused)", "Alt speed:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSessionCommandFailsWhenStatsFail(t *testing.T) {
	fake := &fakeCommandClient{
		session:  &types.Session{Version: "4.0.5"},
		statsErr: &client.APIError{StatusCode: 401, Message: "unauthorized"},
	}
	env, _ := testEnv(fake)
	err := NewSessionCommand(env).Run(nil)
	if !client.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestAltSpeedCommandToggles(t *testing.T) {
	fake := &fakeCommandClient{session: &types.Session{AltSpeedEnabled: true}}
	env, stdout := testEnv(fake)

	if err := NewAltSpeedCommand(env).Run(nil); err != nil {
		t.Fatalf("alt-speed: %v", err)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "alt-speed:false" {
		t.Fatalf("unexpected calls: %v", fake.calls)
	}
	if got := stdout.String(); got != "alt speed off\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
	if err := NewAltSpeedCommand(env).Run([]string{"maybe"}); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestPortTestAndBlocklist(t *testing.T) {
	fake := &fakeCommandClient{portOpen: true, blocklistSize: 1200}
	env, stdout := testEnv(fake)
	if err := NewPortTestCommand(env).Run(nil); err != nil {
		t.Fatalf("port-test: %v", err)
	}
	if err := NewBlocklistCommand(env).Run(nil); err != nil {
		t.Fatalf("blocklist-update: %v", err)
	}
	if got := stdout.String(); got != "port is open\nblocklist has 1200 rules\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestUICommandWiresOptions(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	fake := &fakeCommandClient{}
	env, _ := testEnv(fake)

	var got app.Options
	var gotPath string
	cmd := NewUICommand(env, func(_ context.Context, opts app.Options, configPath string) error {
		got = opts
		gotPath = configPath
		return nil
	})
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("ui: %v", err)
	}
	if got.API != fake {
		t.Fatalf("expected the factory client to be passed through")
	}
	if got.Profile != config.DefaultCoreConfig().DaemonURL() {
		t.Fatalf("unexpected profile %q", got.Profile)
	}
	if got.Prefs == nil || got.Keybindings == nil || got.Logger == nil {
		t.Fatalf("expected prefs, keybindings and logger to be set: %#v", got)
	}
	if filepath.Base(gotPath) != "config.toml" {
		t.Fatalf("expected config watch path, got %q", gotPath)
	}

	if err := cmd.Run([]string{"--no-watch"}); err != nil {
		t.Fatalf("ui --no-watch: %v", err)
	}
	if gotPath != "" {
		t.Fatalf("expected no watch path, got %q", gotPath)
	}
}

func TestConfigCommandDefaultsJSON(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	stdout := &bytes.Buffer{}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{})

	if err := cmd.Run([]string{"--default", "--format", "json", "--keybindings"}); err != nil {
		t.Fatalf("config: %v", err)
	}
	var out configOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out.Daemon.URL, "127.0.0.1:9091") || out.UI.RefreshRateSec != 5 {
		t.Fatalf("unexpected defaults: %#v", out)
	}
	if out.Keybindings[app.KeyCommandQuit] != "q" {
		t.Fatalf("expected default quit key, got %v", out.Keybindings)
	}
}

func TestConfigCommandInitWritesOnce(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	stdout := &bytes.Buffer{}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{})

	if err := cmd.Run([]string{"--init"}); err != nil {
		t.Fatalf("config --init: %v", err)
	}
	if err := cmd.Run([]string{"--init"}); err != nil {
		t.Fatalf("config --init again: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "wrote ") || !strings.HasSuffix(lines[1], "already exists") {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
}

func TestConfigCommandRejectsFormat(t *testing.T) {
	cmd := NewConfigCommand(&bytes.Buffer{}, &bytes.Buffer{})
	if err := cmd.Run([]string{"--format", "yaml"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"4", "2,4", " 7 "})
	if err != nil || !slices.Equal(ids, []int{4, 2, 7}) {
		t.Fatalf("unexpected ids %v err=%v", ids, err)
	}
	if _, err := parseIDs([]string{"0"}); err == nil {
		t.Fatalf("expected error for id 0")
	}
	if _, err := parseIDs([]string{","}); !errors.Is(err, errNoIDs) {
		t.Fatalf("expected missing id error, got %v", err)
	}
}

func TestTableDisplayFollowsEngine(t *testing.T) {
	list, err := orderTorrents(&client.TorrentGetResult{Torrents: sampleRows(t)}, reconcile.Params{
		Sort: torrents.Sort{Key: torrents.SortBySize, Direction: torrents.Ascending},
	})
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	var ids []int
	for _, tor := range list {
		ids = append(ids, tor.ID)
	}
	if !slices.Equal(ids, []int{3, 2, 1}) {
		t.Fatalf("expected size order, got %v", ids)
	}
}

func TestBuildCommandsCoversUsage(t *testing.T) {
	commands := buildCommands(defaultCommandWiring(&bytes.Buffer{}, &bytes.Buffer{}))
	for name := range commands {
		if !strings.Contains(usageText, "  "+name+" ") {
			t.Fatalf("command %q missing from usage", name)
		}
	}
}

func fixedFactory(fake *fakeCommandClient) clientFactory {
	return func(config.CoreConfig, logging.Logger) (commandClient, error) {
		return fake, nil
	}
}

type fakeCommandClient struct {
	getResp  *client.TorrentGetResult
	getErr   error
	getCalls [][]int

	calls []string

	addResp     *client.AddedTorrent
	addRequests []client.AddRequest

	session  *types.Session
	stats    *types.SessionStats
	statsErr error
	space    *types.FreeSpace

	portOpen      bool
	blocklistSize int
}

func (f *fakeCommandClient) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeCommandClient) TorrentGet(_ context.Context, ids []int, _ []string) (*client.TorrentGetResult, error) {
	f.getCalls = append(f.getCalls, ids)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getResp == nil {
		return &client.TorrentGetResult{}, nil
	}
	return f.getResp, nil
}

func (f *fakeCommandClient) TorrentGetRecent(ctx context.Context, fields []string) (*client.TorrentGetResult, error) {
	return f.TorrentGet(ctx, nil, fields)
}

func (f *fakeCommandClient) TorrentStart(_ context.Context, ids []int) error {
	f.record("start:%v", ids)
	return nil
}

func (f *fakeCommandClient) TorrentStartNow(_ context.Context, ids []int) error {
	f.record("start-now:%v", ids)
	return nil
}

func (f *fakeCommandClient) TorrentStop(_ context.Context, ids []int) error {
	f.record("stop:%v", ids)
	return nil
}

func (f *fakeCommandClient) TorrentVerify(_ context.Context, ids []int) error {
	f.record("verify:%v", ids)
	return nil
}

func (f *fakeCommandClient) TorrentReannounce(_ context.Context, ids []int) error {
	f.record("reannounce:%v", ids)
	return nil
}

func (f *fakeCommandClient) TorrentRemove(_ context.Context, ids []int, deleteData bool) error {
	f.record("remove:%v:%v", deleteData, ids)
	return nil
}

func (f *fakeCommandClient) QueueMove(_ context.Context, dir client.QueueDirection, ids []int) error {
	f.record("queue:%s:%v", dir, ids)
	return nil
}

func (f *fakeCommandClient) TorrentAdd(_ context.Context, req client.AddRequest) (*client.AddedTorrent, error) {
	f.addRequests = append(f.addRequests, req)
	if f.addResp == nil {
		return nil, errors.New("addResp not configured")
	}
	return f.addResp, nil
}

func (f *fakeCommandClient) SessionGet(context.Context) (*types.Session, error) {
	if f.session == nil {
		return nil, errors.New("session not configured")
	}
	return f.session, nil
}

func (f *fakeCommandClient) SessionStats(context.Context) (*types.SessionStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	if f.stats == nil {
		return &types.SessionStats{}, nil
	}
	return f.stats, nil
}

func (f *fakeCommandClient) SetAltSpeed(_ context.Context, enabled bool) error {
	f.record("alt-speed:%v", enabled)
	return nil
}

func (f *fakeCommandClient) FreeSpace(context.Context, string) (*types.FreeSpace, error) {
	if f.space == nil {
		return nil, errors.New("free-space unsupported")
	}
	return f.space, nil
}

func (f *fakeCommandClient) PortTest(context.Context) (bool, error) {
	return f.portOpen, nil
}

func (f *fakeCommandClient) BlocklistUpdate(context.Context) (int, error) {
	return f.blocklistSize, nil
}
