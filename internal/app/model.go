package app

import (
	"fmt"
	"sync"
	"time"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"tremote/internal/config"
	"tremote/internal/logging"
	"tremote/internal/reconcile"
	"tremote/internal/store"
	"tremote/internal/torrents"
	"tremote/internal/types"
)

const (
	minListWidth      = 20
	minListHeight     = 2
	statusLinePadding = 1
	chromeLines       = 2
)

type uiMode int

const (
	uiModeNormal uiMode = iota
	uiModeSearch
	uiModeGroupPicker
	uiModeConfirm
	uiModeInspector
)

type Options struct {
	API         DaemonAPI
	Prefs       store.PrefsStore
	Profile     string
	Config      config.CoreConfig
	Logger      logging.Logger
	Keybindings *Keybindings
	Clipboard   clipboardService
}

// pendingConfirm holds a destructive action until the user answers.
type pendingConfirm struct {
	action torrentAction
	ids    []int
	prompt string
}

// msgSender forwards scheduler fires into the program. Fires that arrive
// before the program is attached are held, with their full flags merged, and
// delivered once on attach.
type msgSender struct {
	mu       sync.Mutex
	send     func(tea.Msg)
	held     bool
	heldFull bool
}

func (s *msgSender) set(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	held, full := s.held, s.heldFull
	if send != nil {
		s.held, s.heldFull = false, false
	}
	s.mu.Unlock()
	if held && send != nil {
		// program.Send blocks until the event loop runs.
		go send(reconcileMsg{full: full})
	}
}

func (s *msgSender) fire(full bool) {
	s.mu.Lock()
	send := s.send
	if send == nil {
		s.held = true
		s.heldFull = s.heldFull || full
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	send(reconcileMsg{full: full})
}

type Model struct {
	api         DaemonAPI
	prefsStore  store.PrefsStore
	profile     string
	cfg         config.CoreConfig
	prefs       types.Prefs
	logger      logging.Logger
	keybindings *Keybindings
	hotkeys     []Hotkey
	clipboard   clipboardService

	store     *torrents.Store
	display   *listDisplay
	engine    *reconcile.Engine
	scheduler *reconcile.Scheduler
	sender    *msgSender

	list          list.Model
	search        textinput.Model
	picker        *groupPicker
	confirm       *pendingConfirm
	inspectID     int
	inspectScroll int

	mode       uiMode
	width      int
	height     int
	cursorID   int
	hasCursor  bool
	loaded     bool
	polling    bool
	session    *types.Session
	stats      *types.SessionStats
	lastResult reconcile.Result

	status      string
	statusError bool
	statusSeq   int
}

func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	bindings := opts.Keybindings
	if bindings == nil {
		bindings = DefaultKeybindings()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = defaultClipboardService{}
	}
	prefs := types.DefaultPrefs()
	prefs.DisplayMode = types.DisplayMode(opts.Config.DisplayMode())
	prefs.RefreshRateSec = opts.Config.RefreshRateSec()

	display := newListDisplay()
	itemStore := torrents.NewStore(logger.With(logging.F("component", "store")))
	engine := reconcile.NewEngine(itemStore, display, reconcile.NewSelection(),
		reconcile.WithLogger(logger.With(logging.F("component", "reconcile"))))
	sender := &msgSender{}
	scheduler := reconcile.NewScheduler(opts.Config.Debounce(), sender.fire)

	l := list.New(nil, newRowDelegate(prefs.Compact()), minListWidth, minListHeight)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search names"

	return &Model{
		api:         opts.API,
		prefsStore:  opts.Prefs,
		profile:     opts.Profile,
		cfg:         opts.Config,
		prefs:       prefs,
		logger:      logger,
		keybindings: bindings,
		hotkeys:     DefaultHotkeys(),
		clipboard:   clip,
		store:       itemStore,
		display:     display,
		engine:      engine,
		scheduler:   scheduler,
		sender:      sender,
		list:        l,
		search:      search,
	}
}

// SetPrefs replaces the view preferences, typically with the ones loaded for
// the daemon profile before the program starts.
func (m *Model) SetPrefs(prefs types.Prefs) {
	prefs.FilterText = m.prefs.FilterText
	m.prefs = prefs
	m.list.SetDelegate(newRowDelegate(prefs.Compact()))
	m.resize(m.width, m.height)
}

func (m *Model) Prefs() types.Prefs {
	return m.prefs
}

// attach routes scheduler fires into a running program.
func (m *Model) attach(send func(tea.Msg)) {
	m.sender.set(send)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.startPoll(fetchInitial),
		fetchSessionCmd(m.api),
		pollTickCmd(m.refreshInterval()),
		sessionTickCmd(),
	)
}

func (m *Model) refreshInterval() time.Duration {
	return time.Duration(m.prefs.RefreshRate()) * time.Second
}

func (m *Model) startPoll(kind fetchKind) tea.Cmd {
	m.polling = true
	return fetchTorrentsCmd(m.api, kind, nil)
}

func (m *Model) params() reconcile.Params {
	group := m.prefs.FilterGroup
	if group == torrents.GroupNone {
		group = ""
	}
	return reconcile.Params{
		Filter: torrents.Filter{
			Mode:  torrents.ParseFilterMode(m.prefs.FilterMode),
			Text:  m.prefs.FilterText,
			Group: group,
		},
		Sort: torrents.ParseSort(m.prefs.SortMode, m.prefs.SortDirection),
	}
}

// reconcile runs one engine pass inside the scheduler's running bracket and
// pushes the new order into the list.
func (m *Model) reconcile(full bool) {
	var result reconcile.Result
	ran := m.scheduler.Run(func() {
		result = m.engine.Reconcile(m.params(), full)
	})
	if !ran {
		m.scheduler.Trigger(full)
		return
	}
	m.lastResult = result
	if len(result.Errors) > 0 {
		m.setStatusError(fmt.Sprintf("%d rows failed to render", len(result.Errors)))
	}
	m.syncList()
}

// syncList hands the display order to the list and keeps the cursor on the
// same torrent when it is still visible.
func (m *Model) syncList() {
	prev := m.list.Index()
	m.list.SetItems(m.display.Items())
	n := len(m.list.Items())
	if n == 0 {
		m.hasCursor = false
		return
	}
	idx := -1
	if m.hasCursor {
		idx = m.engine.Index(m.cursorID)
	}
	if idx < 0 {
		idx = clampIndex(prev, n)
	}
	m.selectIndex(idx)
}

func (m *Model) selectIndex(idx int) {
	n := len(m.list.Items())
	if n == 0 {
		m.hasCursor = false
		return
	}
	idx = clampIndex(idx, n)
	m.list.Select(idx)
	if row, ok := m.list.Items()[idx].(*torrentRow); ok {
		m.cursorID = row.id
		m.hasCursor = true
	}
}

func (m *Model) cursorTorrent() (*types.Torrent, bool) {
	if !m.hasCursor {
		return nil, false
	}
	return m.store.Get(m.cursorID)
}

// actionTargets is the visible selection in view order, or the cursor row
// when nothing is selected.
func (m *Model) actionTargets() []int {
	if ids := m.engine.SelectedIDs(); len(ids) > 0 {
		return ids
	}
	if m.hasCursor && m.engine.Index(m.cursorID) >= 0 {
		return []int{m.cursorID}
	}
	return nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	listHeight := height - chromeLines
	if m.mode == uiModeSearch {
		listHeight--
	}
	m.list.SetSize(max(minListWidth, width), max(minListHeight, listHeight))
	m.search.SetWidth(max(10, width-4))
	if m.picker != nil {
		m.picker.SetWidth(width)
	}
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusError = false
	return clearStatusCmd(m.statusSeq)
}

func (m *Model) setStatusError(text string) {
	m.statusSeq++
	m.status = text
	m.statusError = true
}

func (m *Model) savePrefs() tea.Cmd {
	return savePrefsCmd(m.prefsStore, m.profile, m.prefs)
}

// applyViewChange rebuilds the list from scratch after a filter, sort or
// search change.
func (m *Model) applyViewChange(persist bool) tea.Cmd {
	m.scheduler.Trigger(true)
	if !persist {
		return nil
	}
	return m.savePrefs()
}

func (m *Model) applyConfig(cfg config.CoreConfig) tea.Cmd {
	m.cfg = cfg
	m.prefs.RefreshRateSec = cfg.RefreshRateSec()
	compact := cfg.DisplayMode() == string(types.DisplayCompact)
	if compact != m.prefs.Compact() {
		m.setDisplayMode(compact)
	}
	m.logger.Info("config reloaded",
		logging.F("refresh_rate_sec", m.prefs.RefreshRateSec),
		logging.F("display_mode", m.prefs.DisplayMode),
	)
	return tea.Batch(m.savePrefs(), m.setStatus("config reloaded"))
}

func (m *Model) setDisplayMode(compact bool) {
	if compact {
		m.prefs.DisplayMode = types.DisplayCompact
	} else {
		m.prefs.DisplayMode = types.DisplayFull
	}
	m.list.SetDelegate(newRowDelegate(compact))
	m.resize(m.width, m.height)
	m.selectIndex(m.list.Index())
}
