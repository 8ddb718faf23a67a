package app

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
)

const (
	KeyCommandQuit          = "ui.quit"
	KeyCommandUp            = "ui.up"
	KeyCommandDown          = "ui.down"
	KeyCommandPageUp        = "ui.pageUp"
	KeyCommandPageDown      = "ui.pageDown"
	KeyCommandTop           = "ui.top"
	KeyCommandBottom        = "ui.bottom"
	KeyCommandToggleSelect  = "ui.toggleSelect"
	KeyCommandExtendUp      = "ui.extendUp"
	KeyCommandExtendDown    = "ui.extendDown"
	KeyCommandSelectAll     = "ui.selectAll"
	KeyCommandDeselectAll   = "ui.deselectAll"
	KeyCommandPause         = "torrent.pause"
	KeyCommandResume        = "torrent.resume"
	KeyCommandResumeNow     = "torrent.resumeNow"
	KeyCommandVerify        = "torrent.verify"
	KeyCommandReannounce    = "torrent.reannounce"
	KeyCommandRemove        = "torrent.remove"
	KeyCommandRemoveData    = "torrent.removeData"
	KeyCommandQueueUp       = "torrent.queueUp"
	KeyCommandQueueDown     = "torrent.queueDown"
	KeyCommandCopyMagnet    = "torrent.copyMagnet"
	KeyCommandFilterNext    = "view.filterNext"
	KeyCommandFilterPrev    = "view.filterPrev"
	KeyCommandSortNext      = "view.sortNext"
	KeyCommandSortReverse   = "view.sortReverse"
	KeyCommandSearch        = "view.search"
	KeyCommandGroupPicker   = "view.groupPicker"
	KeyCommandToggleCompact = "view.toggleCompact"
	KeyCommandInspector     = "view.inspector"
	KeyCommandRefresh       = "view.refresh"
	KeyCommandAltSpeed      = "session.altSpeed"
)

var defaultKeybindingByCommand = map[string]string{
	KeyCommandQuit:          "q",
	KeyCommandUp:            "k",
	KeyCommandDown:          "j",
	KeyCommandPageUp:        "pgup",
	KeyCommandPageDown:      "pgdown",
	KeyCommandTop:           "home",
	KeyCommandBottom:        "end",
	KeyCommandToggleSelect:  "space",
	KeyCommandExtendUp:      "shift+up",
	KeyCommandExtendDown:    "shift+down",
	KeyCommandSelectAll:     "ctrl+a",
	KeyCommandDeselectAll:   "esc",
	KeyCommandPause:         "p",
	KeyCommandResume:        "r",
	KeyCommandResumeNow:     "R",
	KeyCommandVerify:        "v",
	KeyCommandReannounce:    "a",
	KeyCommandRemove:        "x",
	KeyCommandRemoveData:    "X",
	KeyCommandQueueUp:       "[",
	KeyCommandQueueDown:     "]",
	KeyCommandCopyMagnet:    "y",
	KeyCommandFilterNext:    "f",
	KeyCommandFilterPrev:    "F",
	KeyCommandSortNext:      "s",
	KeyCommandSortReverse:   "S",
	KeyCommandSearch:        "/",
	KeyCommandGroupPicker:   "g",
	KeyCommandToggleCompact: "c",
	KeyCommandInspector:     "i",
	KeyCommandRefresh:       "ctrl+r",
	KeyCommandAltSpeed:      "t",
}

// Keys that always reach their command regardless of overrides.
var builtinKeyAliases = map[string]string{
	"up":     KeyCommandUp,
	"down":   KeyCommandDown,
	"ctrl+c": KeyCommandQuit,
}

type Keybindings struct {
	byCommand map[string]string
	byKey     map[string]string
}

type keybindingEntry struct {
	Command string `json:"command"`
	Key     string `json:"key"`
}

func DefaultKeybindings() *Keybindings {
	return NewKeybindings(nil)
}

// NewKeybindings applies overrides on top of the defaults. When two commands
// end up on the same key the one whose default it is wins; otherwise the
// first command in sorted order keeps it.
func NewKeybindings(overrides map[string]string) *Keybindings {
	byCommand := make(map[string]string, len(defaultKeybindingByCommand))
	for command, key := range defaultKeybindingByCommand {
		byCommand[command] = key
	}
	for command, key := range overrides {
		command = strings.TrimSpace(command)
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := defaultKeybindingByCommand[command]; !ok {
			continue
		}
		byCommand[command] = key
	}
	byKey := map[string]string{}
	for _, command := range KnownKeybindingCommands() {
		key := byCommand[command]
		if key == defaultKeybindingByCommand[command] {
			byKey[key] = command
		}
	}
	for _, command := range KnownKeybindingCommands() {
		key := byCommand[command]
		if _, taken := byKey[key]; taken {
			continue
		}
		byKey[key] = command
	}
	for key, command := range builtinKeyAliases {
		if _, taken := byKey[key]; !taken {
			byKey[key] = command
		}
	}
	return &Keybindings{byCommand: byCommand, byKey: byKey}
}

func LoadKeybindings(path string) (*Keybindings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultKeybindings(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultKeybindings(), nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return DefaultKeybindings(), nil
	}
	overrides, err := parseKeybindingOverrides(data)
	if err != nil {
		return nil, err
	}
	return NewKeybindings(overrides), nil
}

func (k *Keybindings) KeyFor(command string) string {
	if k != nil {
		if key := strings.TrimSpace(k.byCommand[command]); key != "" {
			return key
		}
	}
	return defaultKeybindingByCommand[command]
}

// Command resolves a keystroke to its command, or "" when unbound.
func (k *Keybindings) Command(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if k == nil {
		k = DefaultKeybindings()
	}
	return k.byKey[key]
}

func (k *Keybindings) Bindings() map[string]string {
	out := make(map[string]string, len(defaultKeybindingByCommand))
	for _, command := range KnownKeybindingCommands() {
		out[command] = k.KeyFor(command)
	}
	return out
}

func (m *Model) commandFor(msg tea.KeyPressMsg) string {
	return m.keybindings.Command(msg.String())
}

func parseKeybindingOverrides(data []byte) (map[string]string, error) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil, nil
	}
	raw := map[string]string{}
	if data[0] == '[' {
		var entries []keybindingEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		for _, entry := range entries {
			raw[entry.Command] = entry.Key
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := map[string]string{}
	for command, key := range raw {
		command = strings.TrimSpace(command)
		if _, ok := defaultKeybindingByCommand[command]; !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[command] = key
	}
	return out, nil
}

func KnownKeybindingCommands() []string {
	keys := make([]string, 0, len(defaultKeybindingByCommand))
	for command := range defaultKeybindingByCommand {
		keys = append(keys, command)
	}
	sort.Strings(keys)
	return keys
}
