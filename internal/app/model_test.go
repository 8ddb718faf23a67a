package app

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"tremote/internal/client"
	"tremote/internal/config"
	"tremote/internal/store"
	"tremote/internal/types"
)

type apiCall struct {
	method string
	ids    []int
	flag   bool
}

type fakeAPI struct {
	mu       sync.Mutex
	calls    []apiCall
	get      *client.TorrentGetResult
	session  *types.Session
	actionFn func(method string, ids []int) error
}

func (f *fakeAPI) record(method string, ids []int, flag bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{method: method, ids: append([]int(nil), ids...), flag: flag})
	if f.actionFn != nil {
		return f.actionFn(method, ids)
	}
	return nil
}

func (f *fakeAPI) callsFor(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, call := range f.calls {
		if call.method == method {
			out = append(out, call)
		}
	}
	return out
}

func (f *fakeAPI) TorrentGet(_ context.Context, ids []int, _ []string) (*client.TorrentGetResult, error) {
	_ = f.record("torrent-get", ids, false)
	if f.get == nil {
		return &client.TorrentGetResult{}, nil
	}
	return f.get, nil
}

func (f *fakeAPI) TorrentGetRecent(context.Context, []string) (*client.TorrentGetResult, error) {
	_ = f.record("torrent-get-recent", nil, false)
	return &client.TorrentGetResult{}, nil
}

func (f *fakeAPI) TorrentStart(_ context.Context, ids []int) error {
	return f.record("torrent-start", ids, false)
}

func (f *fakeAPI) TorrentStartNow(_ context.Context, ids []int) error {
	return f.record("torrent-start-now", ids, false)
}

func (f *fakeAPI) TorrentStop(_ context.Context, ids []int) error {
	return f.record("torrent-stop", ids, false)
}

func (f *fakeAPI) TorrentVerify(_ context.Context, ids []int) error {
	return f.record("torrent-verify", ids, false)
}

func (f *fakeAPI) TorrentReannounce(_ context.Context, ids []int) error {
	return f.record("torrent-reannounce", ids, false)
}

func (f *fakeAPI) TorrentRemove(_ context.Context, ids []int, deleteData bool) error {
	return f.record("torrent-remove", ids, deleteData)
}

func (f *fakeAPI) QueueMove(_ context.Context, dir client.QueueDirection, ids []int) error {
	return f.record("queue-move", ids, dir == client.QueueUp)
}

func (f *fakeAPI) SessionGet(context.Context) (*types.Session, error) {
	if f.session == nil {
		return &types.Session{Version: "4.0.5"}, nil
	}
	return f.session, nil
}

func (f *fakeAPI) SessionStats(context.Context) (*types.SessionStats, error) {
	return &types.SessionStats{}, nil
}

func (f *fakeAPI) SetAltSpeed(_ context.Context, enabled bool) error {
	return f.record("alt-speed", nil, enabled)
}

type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) Copy(_ context.Context, text string) (clipboardMethod, error) {
	c.text = text
	return clipboardMethodSystem, nil
}

const sampleTorrents = `[
  {"id":1,"name":"ubuntu-24.04.iso","status":4,"queuePosition":0,"rateDownload":500000,"trackers":[{"announce":"https://torrent.ubuntu.com/announce"}]},
  {"id":2,"name":"debian-12.iso","status":0,"queuePosition":1,"trackers":[{"announce":"http://bttracker.debian.org:6969/announce"}]},
  {"id":3,"name":"arch.iso","status":6,"queuePosition":2,"rateUpload":1000,"hashString":"abcdef"}
]`

func newTestModel(t *testing.T, api *fakeAPI) *Model {
	t.Helper()
	m := NewModel(Options{
		API:       api,
		Prefs:     store.NewMemoryPrefsStore(),
		Profile:   "http://127.0.0.1:9091",
		Config:    config.DefaultCoreConfig(),
		Clipboard: &fakeClipboard{},
	})
	t.Cleanup(m.scheduler.Cancel)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

func loadSample(t *testing.T, m *Model) {
	t.Helper()
	var torrents []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sampleTorrents), &torrents); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	m.Update(torrentsMsg{kind: fetchInitial, result: &client.TorrentGetResult{Torrents: torrents}})
	m.Update(reconcileMsg{})
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyPressMsg
	switch key {
	case "space":
		msg = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEsc}
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "shift+down":
		msg = tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModShift}
	case "ctrl+a":
		msg = tea.KeyPressMsg{Code: 'a', Mod: tea.ModCtrl}
	default:
		r := []rune(key)[0]
		msg = tea.KeyPressMsg{Code: r, Text: key}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// runCmd gives up on commands that block, which are the timers.
func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg, true
	case <-time.After(250 * time.Millisecond):
		return nil, false
	}
}

// drain runs cmd and feeds the resulting messages back into the model.
// Batches are expanded and timers skipped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg, ok := runCmd(cmd)
	if !ok || msg == nil {
		return nil
	}
	var out []tea.Msg
	if batch, isBatch := msg.(tea.BatchMsg); isBatch {
		for _, c := range batch {
			out = append(out, drain(t, m, c)...)
		}
		return out
	}
	out = append(out, msg)
	_, next := m.Update(msg)
	return append(out, drain(t, m, next)...)
}

func visibleIDs(m *Model) []int {
	var out []int
	for _, item := range m.list.Items() {
		out = append(out, item.(*torrentRow).id)
	}
	return out
}

func TestModelInitialFetchPopulatesList(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	if got := visibleIDs(m); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("expected queue order, got %v", got)
	}
	if !m.hasCursor || m.cursorID != 1 {
		t.Fatalf("expected cursor on first row, got %d", m.cursorID)
	}
	if view := m.render(); !strings.Contains(view, "3 Transfers") {
		t.Fatalf("expected transfer count in view:\n%s", view)
	}
}

func TestModelInitFetchesEverything(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	drain(t, m, m.Init())
	if calls := api.callsFor("torrent-get"); len(calls) != 1 || calls[0].ids != nil {
		t.Fatalf("expected one full torrent-get, got %+v", calls)
	}
	if m.session == nil || m.session.Version != "4.0.5" {
		t.Fatalf("expected session to load")
	}
	if !m.loaded || m.polling {
		t.Fatalf("expected initial load to finish, loaded=%v polling=%v", m.loaded, m.polling)
	}
}

func TestModelSelectionKeys(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)

	press(m, "space")
	if got := m.engine.SelectedIDs(); !slices.Equal(got, []int{1}) {
		t.Fatalf("expected toggle to select 1, got %v", got)
	}
	press(m, "shift+down")
	press(m, "shift+down")
	if got := m.engine.SelectedIDs(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("expected range selection, got %v", got)
	}
	press(m, "esc")
	if got := m.engine.SelectedIDs(); len(got) != 0 {
		t.Fatalf("expected esc to clear selection, got %v", got)
	}
	press(m, "ctrl+a")
	if got := m.engine.SelectedIDs(); len(got) != 3 {
		t.Fatalf("expected select all, got %v", got)
	}
	row := m.list.Items()[1].(*torrentRow)
	if !row.selected {
		t.Fatalf("expected row to paint selection")
	}
}

func TestModelPauseTargetsSelectionOrCursor(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	loadSample(t, m)

	drain(t, m, press(m, "p"))
	if calls := api.callsFor("torrent-stop"); len(calls) != 1 || !slices.Equal(calls[0].ids, []int{1}) {
		t.Fatalf("expected cursor torrent paused, got %+v", calls)
	}

	press(m, "ctrl+a")
	drain(t, m, press(m, "p"))
	calls := api.callsFor("torrent-stop")
	if len(calls) != 2 || !slices.Equal(calls[1].ids, []int{1, 3}) {
		t.Fatalf("expected running torrents paused, got %+v", calls)
	}
	if !strings.Contains(m.status, "2 torrents paused") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelResumeSkipsRunningTorrents(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	loadSample(t, m)
	cmd := press(m, "r")
	if cmd == nil {
		t.Fatalf("expected a status command")
	}
	if calls := api.callsFor("torrent-start"); len(calls) != 0 {
		t.Fatalf("expected no start for a downloading torrent, got %+v", calls)
	}
	if !strings.Contains(m.status, "nothing to resume") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelRemoveRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	loadSample(t, m)

	press(m, "X")
	if m.mode != uiModeConfirm || m.confirm == nil {
		t.Fatalf("expected confirmation prompt")
	}
	if !strings.Contains(m.confirm.prompt, "ubuntu-24.04.iso") {
		t.Fatalf("unexpected prompt %q", m.confirm.prompt)
	}
	if calls := api.callsFor("torrent-remove"); len(calls) != 0 {
		t.Fatalf("expected nothing removed before confirmation")
	}
	drain(t, m, press(m, "y"))
	calls := api.callsFor("torrent-remove")
	if len(calls) != 1 || !calls[0].flag || !slices.Equal(calls[0].ids, []int{1}) {
		t.Fatalf("expected removal with data, got %+v", calls)
	}
	if m.mode != uiModeNormal {
		t.Fatalf("expected normal mode after confirm")
	}
}

func TestModelRemoveCancel(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	loadSample(t, m)
	press(m, "x")
	press(m, "n")
	if m.mode != uiModeNormal || len(api.callsFor("torrent-remove")) != 0 {
		t.Fatalf("expected cancel without removal")
	}
}

func TestModelFilterCycleRebuildsAndPersists(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)

	drain(t, m, press(m, "f"))
	if m.prefs.FilterMode != "active" {
		t.Fatalf("expected active filter, got %q", m.prefs.FilterMode)
	}
	saved, err := m.prefsStore.Load(context.Background(), m.profile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.FilterMode != "active" {
		t.Fatalf("expected persisted filter, got %q", saved.FilterMode)
	}
	m.Update(reconcileMsg{full: true})
	if got := visibleIDs(m); !slices.Equal(got, []int{1, 3}) {
		t.Fatalf("expected only active torrents, got %v", got)
	}
	if view := m.render(); !strings.Contains(view, "2 of 3 Transfers") {
		t.Fatalf("expected filtered count in view")
	}
}

func TestModelSortReverseKeepsCursorOnTorrent(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	press(m, "j")
	if m.cursorID != 2 {
		t.Fatalf("expected cursor on 2, got %d", m.cursorID)
	}
	press(m, "S")
	m.Update(reconcileMsg{full: true})
	if got := visibleIDs(m); !slices.Equal(got, []int{3, 2, 1}) {
		t.Fatalf("expected reversed order, got %v", got)
	}
	if m.cursorID != 2 || m.list.Index() != 1 {
		t.Fatalf("expected cursor to follow torrent 2, got id=%d index=%d", m.cursorID, m.list.Index())
	}
}

func TestModelSearchFiltersByName(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	press(m, "/")
	if m.mode != uiModeSearch {
		t.Fatalf("expected search mode")
	}
	for _, r := range "deb" {
		press(m, string(r))
	}
	press(m, "enter")
	m.Update(reconcileMsg{full: true})
	if got := visibleIDs(m); !slices.Equal(got, []int{2}) {
		t.Fatalf("expected search match only, got %v", got)
	}
	saved, _ := m.prefsStore.Load(context.Background(), m.profile)
	if saved.FilterText != "" {
		t.Fatalf("search text must not persist")
	}
	press(m, "esc")
	m.Update(reconcileMsg{full: true})
	if got := visibleIDs(m); len(got) != 3 {
		t.Fatalf("expected esc to clear the search, got %v", got)
	}
}

func TestModelGroupPickerAppliesTrackerFilter(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	press(m, "g")
	if m.mode != uiModeGroupPicker {
		t.Fatalf("expected picker mode")
	}
	for _, r := range "debian" {
		press(m, string(r))
	}
	drain(t, m, press(m, "enter"))
	if m.prefs.FilterGroup != "debian.org" {
		t.Fatalf("expected debian.org group, got %q", m.prefs.FilterGroup)
	}
	m.Update(reconcileMsg{full: true})
	if got := visibleIDs(m); !slices.Equal(got, []int{2}) {
		t.Fatalf("expected tracker match only, got %v", got)
	}
}

func TestModelRecentPollMergesAndRemoves(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	updates := rawBatch(t, `{"id":1,"status":0}`)
	m.Update(torrentsMsg{kind: fetchRecent, result: &client.TorrentGetResult{Torrents: updates, Removed: []int{3}}})
	m.Update(reconcileMsg{})
	if got := visibleIDs(m); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("expected removal to drop row 3, got %v", got)
	}
	tor, _ := m.store.Get(1)
	if !tor.IsStopped() || tor.DisplayName() != "ubuntu-24.04.iso" {
		t.Fatalf("expected partial merge to keep name and update status")
	}
}

func TestModelNeedInfoRequestsMetadata(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	loadSample(t, m)
	updates := rawBatch(t, `{"id":9,"rateDownload":10}`)
	_, cmd := m.Update(torrentsMsg{kind: fetchRecent, result: &client.TorrentGetResult{Torrents: updates}})
	if cmd == nil {
		t.Fatalf("expected a metadata fetch")
	}
	cmd()
	calls := api.callsFor("torrent-get")
	if len(calls) != 1 || !slices.Equal(calls[0].ids, []int{9}) {
		t.Fatalf("expected torrent-get for id 9, got %+v", calls)
	}
}

func TestModelFullRefreshDropsVanishedTorrents(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	m.Update(torrentsMsg{kind: fetchInitial, result: &client.TorrentGetResult{Torrents: rawBatch(t, `{"id":2,"name":"debian-12.iso","status":0}`)}})
	m.Update(reconcileMsg{})
	if got := visibleIDs(m); !slices.Equal(got, []int{2}) {
		t.Fatalf("expected only torrent 2 after full refresh, got %v", got)
	}
}

func TestModelToggleCompactChangesRowHeight(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	if m.prefs.Compact() {
		t.Fatalf("expected full rows by default")
	}
	drain(t, m, press(m, "c"))
	if !m.prefs.Compact() {
		t.Fatalf("expected compact rows")
	}
	saved, _ := m.prefsStore.Load(context.Background(), m.profile)
	if !saved.Compact() {
		t.Fatalf("expected display mode to persist")
	}
}

func TestModelCopyMagnetUsesClipboard(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	clip := m.clipboard.(*fakeClipboard)
	m.selectIndex(2)
	drain(t, m, press(m, "y"))
	if clip.text != "magnet:?xt=urn:btih:abcdef" {
		t.Fatalf("unexpected clipboard text %q", clip.text)
	}
	if m.status != "copied magnet link" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelAltSpeedToggle(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	if cmd := press(m, "t"); cmd != nil {
		t.Fatalf("expected no request before the session loads")
	}
	m.Update(sessionMsg{session: &types.Session{}})
	drain(t, m, press(m, "t"))
	calls := api.callsFor("alt-speed")
	if len(calls) != 1 || !calls[0].flag {
		t.Fatalf("expected alt speed enabled, got %+v", calls)
	}
	if !m.session.AltSpeedEnabled {
		t.Fatalf("expected session flag updated")
	}
}

func TestModelConfigReloadAppliesDisplayMode(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	cfg := config.DefaultCoreConfig()
	cfg.UI.DisplayMode = "compact"
	cfg.UI.RefreshRateSec = 9
	m.Update(configReloadedMsg{cfg: cfg})
	if !m.prefs.Compact() || m.prefs.RefreshRateSec != 9 {
		t.Fatalf("expected reloaded config to apply, got %+v", m.prefs)
	}
}

func TestModelPollErrorKeepsPolling(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	loadSample(t, m)
	m.polling = true
	m.Update(torrentsMsg{kind: fetchRecent, err: &client.APIError{StatusCode: 502, Message: "bad gateway"}})
	if m.polling || !m.statusError {
		t.Fatalf("expected error status and polling released")
	}
	_, cmd := m.Update(pollTickMsg{})
	if cmd == nil || !m.polling {
		t.Fatalf("expected the next tick to poll again")
	}
}

func TestHeaderSanitizesStoredGroup(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	m.prefs.FilterGroup = "\u202eevil\x1b]0;x\x07.org"
	header := m.renderHeader()
	if strings.Contains(header, "\u202e") || strings.Contains(header, "\x07") {
		t.Fatalf("unsanitized header %q", header)
	}
	if !strings.Contains(header, "evil") {
		t.Fatalf("expected readable group in header, got %q", header)
	}
}

func TestSenderHoldsFiresUntilAttached(t *testing.T) {
	sender := &msgSender{}
	sender.fire(true)
	sender.fire(false)

	got := make(chan tea.Msg, 4)
	sender.set(func(msg tea.Msg) { got <- msg })
	select {
	case msg := <-got:
		if rm, ok := msg.(reconcileMsg); !ok || !rm.full {
			t.Fatalf("expected held full rebuild, got %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("held fire was never delivered")
	}

	sender.fire(false)
	select {
	case msg := <-got:
		if rm, ok := msg.(reconcileMsg); !ok || rm.full {
			t.Fatalf("expected incremental pass, got %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("fire after attach was not delivered")
	}
	select {
	case msg := <-got:
		t.Fatalf("unexpected extra message %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
