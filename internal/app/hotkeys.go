package app

import (
	"sort"
	"strings"
)

type HotkeyContext int

const (
	HotkeyGlobal HotkeyContext = iota
	HotkeyList
	HotkeySearch
	HotkeyGroupPicker
	HotkeyConfirm
	HotkeyInspector
)

// Hotkey describes one help-line entry. Command, when set, resolves the
// displayed key through the active keybindings.
type Hotkey struct {
	Key      string
	Command  string
	Label    string
	Context  HotkeyContext
	Priority int
}

func DefaultHotkeys() []Hotkey {
	return []Hotkey{
		{Command: KeyCommandQuit, Label: "quit", Context: HotkeyGlobal, Priority: 90},
		{Key: "j/k", Label: "move", Context: HotkeyList, Priority: 10},
		{Command: KeyCommandToggleSelect, Label: "select", Context: HotkeyList, Priority: 11},
		{Command: KeyCommandPause, Label: "pause", Context: HotkeyList, Priority: 20},
		{Command: KeyCommandResume, Label: "resume", Context: HotkeyList, Priority: 21},
		{Command: KeyCommandRemove, Label: "remove", Context: HotkeyList, Priority: 22},
		{Command: KeyCommandFilterNext, Label: "filter", Context: HotkeyList, Priority: 30},
		{Command: KeyCommandSortNext, Label: "sort", Context: HotkeyList, Priority: 31},
		{Command: KeyCommandSearch, Label: "search", Context: HotkeyList, Priority: 32},
		{Command: KeyCommandGroupPicker, Label: "tracker", Context: HotkeyList, Priority: 33},
		{Command: KeyCommandInspector, Label: "details", Context: HotkeyList, Priority: 40},
		{Command: KeyCommandToggleCompact, Label: "compact", Context: HotkeyList, Priority: 41},
		{Key: "enter", Label: "apply", Context: HotkeySearch, Priority: 10},
		{Key: "esc", Label: "clear", Context: HotkeySearch, Priority: 11},
		{Key: "↑/↓", Label: "move", Context: HotkeyGroupPicker, Priority: 10},
		{Key: "enter", Label: "choose", Context: HotkeyGroupPicker, Priority: 11},
		{Key: "esc", Label: "cancel", Context: HotkeyGroupPicker, Priority: 12},
		{Key: "y", Label: "confirm", Context: HotkeyConfirm, Priority: 10},
		{Key: "n/esc", Label: "cancel", Context: HotkeyConfirm, Priority: 11},
		{Key: "esc", Label: "close", Context: HotkeyInspector, Priority: 10},
		{Command: KeyCommandCopyMagnet, Label: "copy magnet", Context: HotkeyInspector, Priority: 11},
	}
}

func activeHotkeyContexts(mode uiMode) []HotkeyContext {
	switch mode {
	case uiModeSearch:
		return []HotkeyContext{HotkeySearch}
	case uiModeGroupPicker:
		return []HotkeyContext{HotkeyGroupPicker}
	case uiModeConfirm:
		return []HotkeyContext{HotkeyConfirm}
	case uiModeInspector:
		return []HotkeyContext{HotkeyGlobal, HotkeyInspector}
	default:
		return []HotkeyContext{HotkeyGlobal, HotkeyList}
	}
}

func renderHotkeys(hotkeys []Hotkey, bindings *Keybindings, mode uiMode) string {
	visible := FilterHotkeys(hotkeys, activeHotkeyContexts(mode))
	parts := make([]string, 0, len(visible))
	for _, hk := range visible {
		key := hk.Key
		if hk.Command != "" {
			key = bindings.KeyFor(hk.Command)
		}
		parts = append(parts, key+" "+hk.Label)
	}
	return strings.Join(parts, " • ")
}

func FilterHotkeys(hotkeys []Hotkey, contexts []HotkeyContext) []Hotkey {
	if len(hotkeys) == 0 || len(contexts) == 0 {
		return nil
	}
	allowed := map[HotkeyContext]struct{}{}
	for _, ctx := range contexts {
		allowed[ctx] = struct{}{}
	}
	var out []Hotkey
	for _, hk := range hotkeys {
		if _, ok := allowed[hk.Context]; ok {
			out = append(out, hk)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority == out[j].Priority {
			return out[i].Label < out[j].Label
		}
		return out[i].Priority < out[j].Priority
	})
	return out
}
