package torrents

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"tremote/internal/types"
)

type SortKey string

const (
	SortByQueue    SortKey = "queue_order"
	SortByActivity SortKey = "activity"
	SortByAge      SortKey = "age"
	SortByName     SortKey = "name"
	SortByProgress SortKey = "percent_completed"
	SortByRatio    SortKey = "ratio"
	SortBySize     SortKey = "size"
	SortByState    SortKey = "state"
)

type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

func ParseSortDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "descending", "desc", "reverse":
		return Descending
	default:
		return Ascending
	}
}

func (d SortDirection) Reverse() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// SortKeySpec compares two non-nil torrents for one sort key. Compare may
// return 0; Sort.Compare breaks ties by name and then by id.
type SortKeySpec struct {
	Key     SortKey
	Label   string
	Compare func(left, right *types.Torrent) int
}

var (
	sortRegistryMu sync.RWMutex
	sortSpecs      = map[SortKey]SortKeySpec{}
	sortOrder      = []SortKey{}
)

func init() {
	mustRegisterDefaultSortSpecs()
}

func mustRegisterDefaultSortSpecs() {
	RegisterSortKey(SortKeySpec{
		Key:     SortByQueue,
		Label:   "Queue",
		Compare: compareQueue,
	})
	RegisterSortKey(SortKeySpec{
		Key:   SortByActivity,
		Label: "Activity",
		Compare: func(left, right *types.Torrent) int {
			if c := cmp.Compare(right.Activity(), left.Activity()); c != 0 {
				return c
			}
			return compareState(left, right)
		},
	})
	RegisterSortKey(SortKeySpec{
		Key:   SortByAge,
		Label: "Age",
		Compare: func(left, right *types.Torrent) int {
			if c := cmp.Compare(right.Added(), left.Added()); c != 0 {
				return c
			}
			return compareQueue(left, right)
		},
	})
	RegisterSortKey(SortKeySpec{
		Key:     SortByName,
		Label:   "Name",
		Compare: compareName,
	})
	RegisterSortKey(SortKeySpec{
		Key:   SortByProgress,
		Label: "Progress",
		Compare: func(left, right *types.Torrent) int {
			if c := cmp.Compare(left.Progress(), right.Progress()); c != 0 {
				return c
			}
			return compareRatio(left, right)
		},
	})
	RegisterSortKey(SortKeySpec{
		Key:     SortByRatio,
		Label:   "Ratio",
		Compare: compareRatio,
	})
	RegisterSortKey(SortKeySpec{
		Key:   SortBySize,
		Label: "Size",
		Compare: func(left, right *types.Torrent) int {
			if c := cmp.Compare(left.Size(), right.Size()); c != 0 {
				return c
			}
			return compareName(left, right)
		},
	})
	RegisterSortKey(SortKeySpec{
		Key:     SortByState,
		Label:   "State",
		Compare: compareState,
	})
}

func compareName(left, right *types.Torrent) int {
	return strings.Compare(left.CollatedName(), right.CollatedName())
}

func compareQueue(left, right *types.Torrent) int {
	return cmp.Compare(left.Queue(), right.Queue())
}

func compareState(left, right *types.Torrent) int {
	if c := cmp.Compare(right.State(), left.State()); c != 0 {
		return c
	}
	return compareQueue(left, right)
}

func compareRatio(left, right *types.Torrent) int {
	if c := cmp.Compare(left.Ratio(), right.Ratio()); c != 0 {
		return c
	}
	return compareState(left, right)
}

func RegisterSortKey(spec SortKeySpec) {
	key := SortKey(strings.ToLower(strings.TrimSpace(string(spec.Key))))
	if key == "" {
		return
	}
	spec.Key = key
	label := strings.TrimSpace(spec.Label)
	if label == "" {
		label = strings.ToUpper(string(key[:1])) + string(key[1:])
	}
	spec.Label = label
	if spec.Compare == nil {
		spec.Compare = compareName
	}

	sortRegistryMu.Lock()
	defer sortRegistryMu.Unlock()
	if _, exists := sortSpecs[key]; !exists {
		sortOrder = append(sortOrder, key)
	}
	sortSpecs[key] = spec
}

func SortKeys() []SortKey {
	sortRegistryMu.RLock()
	defer sortRegistryMu.RUnlock()
	return append([]SortKey(nil), sortOrder...)
}

func ParseSortKey(raw string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	sortRegistryMu.RLock()
	defer sortRegistryMu.RUnlock()
	if _, ok := sortSpecs[key]; ok {
		return key
	}
	return SortByQueue
}

func SortLabel(key SortKey) string {
	key = ParseSortKey(string(key))
	sortRegistryMu.RLock()
	defer sortRegistryMu.RUnlock()
	if spec, ok := sortSpecs[key]; ok {
		return spec.Label
	}
	return "Queue"
}

func CycleSortKey(current SortKey, step int) SortKey {
	order := SortKeys()
	if len(order) == 0 {
		return SortByQueue
	}
	current = ParseSortKey(string(current))
	idx := 0
	for i, key := range order {
		if key == current {
			idx = i
			break
		}
	}
	n := len(order)
	idx = ((idx+step)%n + n) % n
	return order[idx]
}

type Sort struct {
	Key       SortKey
	Direction SortDirection
}

func ParseSort(key, direction string) Sort {
	return Sort{Key: ParseSortKey(key), Direction: ParseSortDirection(direction)}
}

// Compare orders torrents by key, then name, then id. Descending reverses the
// whole order, tie-breaks included, so two distinct ids never compare equal.
// A nil torrent sorts lowest.
func (s Sort) Compare(left, right *types.Torrent) int {
	c := s.compareAscending(left, right)
	if s.Direction == Descending {
		return -c
	}
	return c
}

func (s Sort) compareAscending(left, right *types.Torrent) int {
	if left == nil || right == nil {
		switch {
		case left == nil && right == nil:
			return 0
		case left == nil:
			return -1
		default:
			return 1
		}
	}
	sortRegistryMu.RLock()
	spec, ok := sortSpecs[resolveSortKeyLocked(s.Key)]
	sortRegistryMu.RUnlock()
	if ok {
		if c := spec.Compare(left, right); c != 0 {
			return c
		}
	}
	if c := compareName(left, right); c != 0 {
		return c
	}
	return cmp.Compare(left.ID, right.ID)
}

// callers hold sortRegistryMu.
func resolveSortKeyLocked(key SortKey) SortKey {
	if _, ok := sortSpecs[key]; ok {
		return key
	}
	return SortByQueue
}

func (s Sort) Less(left, right *types.Torrent) bool {
	return s.Compare(left, right) < 0
}

func (s Sort) SortTorrents(list []*types.Torrent) {
	slices.SortFunc(list, s.Compare)
}

func (s Sort) Label() string {
	arrow := "↑"
	if s.Direction == Descending {
		arrow = "↓"
	}
	return SortLabel(s.Key) + " " + arrow
}
