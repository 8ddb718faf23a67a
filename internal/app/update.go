package app

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"tremote/internal/client"
	"tremote/internal/logging"
	"tremote/internal/sanitizer"
	"tremote/internal/torrents"
	"tremote/internal/types"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	case torrentsMsg:
		return m, m.handleTorrents(msg)
	case reconcileMsg:
		m.reconcile(msg.full)
		return m, nil
	case pollTickMsg:
		var cmds []tea.Cmd
		if !m.polling {
			kind := fetchRecent
			if !m.loaded {
				kind = fetchInitial
			}
			cmds = append(cmds, m.startPoll(kind))
		}
		cmds = append(cmds, pollTickCmd(m.refreshInterval()))
		return m, tea.Batch(cmds...)
	case sessionTickMsg:
		return m, tea.Batch(fetchSessionCmd(m.api), sessionTickCmd())
	case sessionMsg:
		if msg.err != nil {
			m.logger.Warn("session fetch failed", logging.F("error", msg.err))
			m.setStatusError("session: " + describeError(msg.err))
			return m, nil
		}
		m.session = msg.session
		m.stats = msg.stats
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.logger.Warn("torrent action failed", logging.F("action", msg.action), logging.F("ids", msg.ids), logging.F("error", msg.err))
			m.setStatusError(fmt.Sprintf("%s failed: %s", msg.action, describeError(msg.err)))
			return m, nil
		}
		cmds := []tea.Cmd{m.setStatus(fmt.Sprintf("%s %s", pluralTorrents(len(msg.ids)), msg.action))}
		if !m.polling && m.loaded {
			cmds = append(cmds, m.startPoll(fetchRecent))
		}
		return m, tea.Batch(cmds...)
	case altSpeedMsg:
		if msg.err != nil {
			m.setStatusError("alt speed: " + describeError(msg.err))
			return m, nil
		}
		if m.session != nil {
			m.session.AltSpeedEnabled = msg.enabled
		}
		state := "off"
		if msg.enabled {
			state = "on"
		}
		return m, m.setStatus("alternative speed limits " + state)
	case configReloadedMsg:
		if msg.err != nil {
			m.logger.Warn("config reload failed", logging.F("error", msg.err))
			m.setStatusError("config: " + msg.err.Error())
			return m, nil
		}
		return m, m.applyConfig(msg.cfg)
	case prefsSavedMsg:
		if msg.err != nil {
			m.logger.Warn("prefs save failed", logging.F("error", msg.err))
			m.setStatusError("save preferences: " + msg.err.Error())
		}
		return m, nil
	case clipboardMsg:
		if msg.err != nil {
			m.setStatusError("copy failed: " + msg.err.Error())
			return m, nil
		}
		return m, m.setStatus("copied " + msg.label)
	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusError = false
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleTorrents(msg torrentsMsg) tea.Cmd {
	if msg.kind == fetchInitial || msg.kind == fetchRecent {
		m.polling = false
	}
	if msg.err != nil {
		m.logger.Warn("torrent fetch failed", logging.F("kind", msg.kind.String()), logging.F("error", msg.err))
		m.setStatusError(describeError(msg.err))
		return nil
	}
	if msg.result == nil {
		return nil
	}
	removed := msg.result.Removed
	if msg.kind == fetchInitial && m.loaded {
		removed = append(removed, m.missingFrom(msg.result.Torrents)...)
	}
	batch := m.store.ApplyBatch(msg.result.Torrents, removed)
	if msg.kind == fetchInitial {
		m.loaded = true
	}
	m.engine.Refresh(batch.Changed)
	if len(batch.Added)+len(batch.Changed)+len(batch.Removed) > 0 {
		m.scheduler.Trigger(false)
	}
	m.logger.Debug("torrents merged",
		logging.F("kind", msg.kind.String()),
		logging.F("added", len(batch.Added)),
		logging.F("changed", len(batch.Changed)),
		logging.F("removed", len(batch.Removed)),
	)
	if len(batch.NeedInfo) > 0 {
		return fetchTorrentsCmd(m.api, fetchInfo, batch.NeedInfo)
	}
	return nil
}

// missingFrom lists known ids absent from a full listing.
func (m *Model) missingFrom(updates []map[string]json.RawMessage) []int {
	present := make(map[int]struct{}, len(updates))
	for _, update := range updates {
		var id int
		if raw, ok := update[types.FieldID]; ok && json.Unmarshal(raw, &id) == nil {
			present[id] = struct{}{}
		}
	}
	var missing []int
	for _, t := range m.store.All() {
		if _, ok := present[t.ID]; !ok {
			missing = append(missing, t.ID)
		}
	}
	return missing
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.scheduler.Cancel()
		return tea.Quit
	}
	switch m.mode {
	case uiModeSearch:
		return m.handleSearchKey(msg)
	case uiModeGroupPicker:
		return m.handlePickerKey(msg)
	case uiModeConfirm:
		return m.handleConfirmKey(msg)
	case uiModeInspector:
		return m.handleInspectorKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyPressMsg) tea.Cmd {
	switch m.commandFor(msg) {
	case KeyCommandQuit:
		m.scheduler.Cancel()
		return tea.Quit
	case KeyCommandUp:
		m.selectIndex(m.list.Index() - 1)
	case KeyCommandDown:
		m.selectIndex(m.list.Index() + 1)
	case KeyCommandPageUp:
		m.list.PrevPage()
		m.selectIndex(m.list.Index())
	case KeyCommandPageDown:
		m.list.NextPage()
		m.selectIndex(m.list.Index())
	case KeyCommandTop:
		m.selectIndex(0)
	case KeyCommandBottom:
		m.selectIndex(len(m.list.Items()) - 1)
	case KeyCommandToggleSelect:
		if m.hasCursor {
			m.engine.Selection().Toggle(m.cursorID)
			m.engine.SyncSelection()
		}
	case KeyCommandExtendUp:
		m.extendSelection(-1)
	case KeyCommandExtendDown:
		m.extendSelection(1)
	case KeyCommandSelectAll:
		m.engine.Selection().SelectAll(m.engine.Order())
		m.engine.SyncSelection()
	case KeyCommandDeselectAll:
		if m.engine.Selection().Len() == 0 && m.prefs.FilterText != "" {
			m.prefs.FilterText = ""
			m.search.Reset()
			return m.applyViewChange(false)
		}
		m.engine.Selection().DeselectAll()
		m.engine.SyncSelection()
	case KeyCommandPause:
		return m.runAction(actionPause, func(t *types.Torrent) bool { return !t.IsStopped() })
	case KeyCommandResume:
		return m.runAction(actionResume, (*types.Torrent).IsStopped)
	case KeyCommandResumeNow:
		return m.runAction(actionResumeNow, func(t *types.Torrent) bool { return t.IsStopped() || t.IsQueued() })
	case KeyCommandVerify:
		return m.runAction(actionVerify, func(t *types.Torrent) bool { return !t.IsChecking() })
	case KeyCommandReannounce:
		return m.runAction(actionReannounce, func(t *types.Torrent) bool { return !t.IsStopped() })
	case KeyCommandQueueUp:
		return m.runAction(actionQueueUp, nil)
	case KeyCommandQueueDown:
		return m.runAction(actionQueueDown, nil)
	case KeyCommandRemove:
		return m.askConfirm(actionRemove, "Remove %s?")
	case KeyCommandRemoveData:
		return m.askConfirm(actionRemoveData, "Remove %s and delete their data?")
	case KeyCommandCopyMagnet:
		return m.copyMagnet()
	case KeyCommandFilterNext:
		m.prefs.FilterMode = string(torrents.CycleFilterMode(torrents.FilterMode(m.prefs.FilterMode), 1))
		return m.applyViewChange(true)
	case KeyCommandFilterPrev:
		m.prefs.FilterMode = string(torrents.CycleFilterMode(torrents.FilterMode(m.prefs.FilterMode), -1))
		return m.applyViewChange(true)
	case KeyCommandSortNext:
		m.prefs.SortMode = string(torrents.CycleSortKey(torrents.ParseSortKey(m.prefs.SortMode), 1))
		return m.applyViewChange(true)
	case KeyCommandSortReverse:
		m.prefs.SortDirection = string(torrents.ParseSortDirection(m.prefs.SortDirection).Reverse())
		return m.applyViewChange(true)
	case KeyCommandSearch:
		m.mode = uiModeSearch
		m.search.SetValue(m.prefs.FilterText)
		m.resize(m.width, m.height)
		return m.search.Focus()
	case KeyCommandGroupPicker:
		m.picker = newGroupPicker(m.store.Groups(), m.store.Len(), m.prefs.FilterGroup)
		m.picker.SetWidth(m.width)
		m.mode = uiModeGroupPicker
		return m.picker.Focus()
	case KeyCommandToggleCompact:
		m.setDisplayMode(!m.prefs.Compact())
		return m.savePrefs()
	case KeyCommandInspector:
		if !m.hasCursor {
			return nil
		}
		m.mode = uiModeInspector
		m.inspectID = m.cursorID
		m.inspectScroll = 0
		return fetchTorrentsCmd(m.api, fetchDetails, []int{m.inspectID})
	case KeyCommandRefresh:
		if m.polling {
			return nil
		}
		return tea.Batch(m.startPoll(fetchInitial), fetchSessionCmd(m.api))
	case KeyCommandAltSpeed:
		if m.session == nil {
			m.setStatusError("session not loaded yet")
			return nil
		}
		return setAltSpeedCmd(m.api, !m.session.AltSpeedEnabled)
	}
	return nil
}

// extendSelection grows the selection from the anchor while moving the
// cursor. Without an anchor the current row becomes one first.
func (m *Model) extendSelection(delta int) {
	if !m.hasCursor {
		return
	}
	sel := m.engine.Selection()
	if _, ok := sel.Anchor(); !ok {
		sel.Select(m.cursorID)
	}
	m.selectIndex(m.list.Index() + delta)
	sel.ExtendTo(m.cursorID, m.engine.Order())
	m.engine.SyncSelection()
}

// runAction sends action for the targets that accept it. A nil accept keeps
// every target.
func (m *Model) runAction(action torrentAction, accept func(*types.Torrent) bool) tea.Cmd {
	targets := m.actionTargets()
	if len(targets) == 0 {
		m.setStatusError("no torrent selected")
		return nil
	}
	ids := make([]int, 0, len(targets))
	for _, id := range targets {
		t, ok := m.store.Get(id)
		if !ok {
			continue
		}
		if accept == nil || accept(t) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return m.setStatus("nothing to " + action.name)
	}
	return torrentActionCmd(m.api, action, ids)
}

func (m *Model) askConfirm(action torrentAction, prompt string) tea.Cmd {
	targets := m.actionTargets()
	if len(targets) == 0 {
		m.setStatusError("no torrent selected")
		return nil
	}
	subject := pluralTorrents(len(targets))
	if len(targets) == 1 {
		if t, ok := m.store.Get(targets[0]); ok && t.DisplayName() != "" {
			subject = fmt.Sprintf("%q", sanitizer.Line(t.DisplayName()))
		}
	}
	m.confirm = &pendingConfirm{action: action, ids: targets, prompt: fmt.Sprintf(prompt, subject)}
	m.mode = uiModeConfirm
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyPressMsg) tea.Cmd {
	pending := m.confirm
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.confirm = nil
		m.mode = uiModeNormal
		if pending == nil {
			return nil
		}
		m.engine.Selection().DeselectAll()
		m.engine.SyncSelection()
		return torrentActionCmd(m.api, pending.action, pending.ids)
	case "n", "esc", "q":
		m.confirm = nil
		m.mode = uiModeNormal
		return m.setStatus("cancelled")
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.exitSearch()
		return nil
	case "esc":
		m.search.Reset()
		m.exitSearch()
		if m.prefs.FilterText != "" {
			m.prefs.FilterText = ""
			return m.applyViewChange(false)
		}
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if text := m.search.Value(); text != m.prefs.FilterText {
		m.prefs.FilterText = text
		return tea.Batch(cmd, m.applyViewChange(false))
	}
	return cmd
}

func (m *Model) exitSearch() {
	m.search.Blur()
	m.mode = uiModeNormal
	m.resize(m.width, m.height)
}

func (m *Model) handlePickerKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.picker == nil {
		m.mode = uiModeNormal
		return nil
	}
	switch msg.String() {
	case "esc":
		m.picker = nil
		m.mode = uiModeNormal
		return nil
	case "up", "ctrl+p":
		m.picker.Move(-1)
		return nil
	case "down", "ctrl+n":
		m.picker.Move(1)
		return nil
	case "enter":
		domain, ok := m.picker.Selected()
		m.picker = nil
		m.mode = uiModeNormal
		if !ok || domain == m.prefs.FilterGroup {
			return nil
		}
		m.prefs.FilterGroup = domain
		return m.applyViewChange(true)
	}
	return m.picker.Update(msg)
}

func (m *Model) handleInspectorKey(msg tea.KeyPressMsg) tea.Cmd {
	switch cmd := m.commandFor(msg); {
	case msg.String() == "esc" || cmd == KeyCommandInspector || cmd == KeyCommandQuit:
		m.mode = uiModeNormal
		return nil
	case cmd == KeyCommandDown:
		m.inspectScroll++
	case cmd == KeyCommandUp:
		m.inspectScroll = max(0, m.inspectScroll-1)
	case cmd == KeyCommandCopyMagnet:
		return m.copyMagnet()
	}
	return nil
}

func (m *Model) copyMagnet() tea.Cmd {
	id := m.cursorID
	if m.mode == uiModeInspector {
		id = m.inspectID
	}
	t, ok := m.store.Get(id)
	if !ok {
		m.setStatusError("no torrent selected")
		return nil
	}
	magnet := t.Magnet()
	if magnet == "" {
		m.setStatusError("no magnet link for " + sanitizer.Line(t.DisplayName()))
		return nil
	}
	return copyToClipboardCmd(m.clipboard, magnet, "magnet link")
}

func pluralTorrents(n int) string {
	if n == 1 {
		return "1 torrent"
	}
	return fmt.Sprintf("%d torrents", n)
}

func describeError(err error) string {
	if client.IsUnauthorized(err) {
		return "daemon rejected credentials"
	}
	return err.Error()
}
