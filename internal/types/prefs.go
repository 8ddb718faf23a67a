package types

type DisplayMode string

const (
	DisplayFull    DisplayMode = "full"
	DisplayCompact DisplayMode = "compact"
)

const MinRefreshRateSec = 2

type Prefs struct {
	SortMode       string      `json:"sort_mode"`
	SortDirection  string      `json:"sort_direction"`
	FilterMode     string      `json:"filter_mode"`
	FilterGroup    string      `json:"filter_group,omitempty"`
	FilterText     string      `json:"-"`
	DisplayMode    DisplayMode `json:"display_mode"`
	RefreshRateSec int         `json:"refresh_rate_sec"`
}

func DefaultPrefs() Prefs {
	return Prefs{
		SortMode:       "queue_order",
		SortDirection:  "ascending",
		FilterMode:     "all",
		DisplayMode:    DisplayFull,
		RefreshRateSec: 5,
	}
}

func (p Prefs) Compact() bool {
	return p.DisplayMode == DisplayCompact
}

func (p Prefs) RefreshRate() int {
	if p.RefreshRateSec < MinRefreshRateSec {
		return MinRefreshRateSec
	}
	return p.RefreshRateSec
}
