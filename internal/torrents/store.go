package torrents

import (
	"encoding/json"
	"sort"

	"tremote/internal/logging"
	"tremote/internal/types"
)

// Store owns every known torrent and accumulates the ids that must be
// re-evaluated by the next reconciliation pass. It is not safe for concurrent
// use; callers mutate it from a single goroutine.
type Store struct {
	torrents map[int]*types.Torrent
	dirty    map[int]struct{}
	logger   logging.Logger
}

type BatchResult struct {
	Added    []int
	Changed  []int
	Removed  []int
	NeedInfo []int
	Dropped  int
}

func NewStore(logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		torrents: map[int]*types.Torrent{},
		dirty:    map[int]struct{}{},
		logger:   logger,
	}
}

// ApplyBatch merges a torrent-get response. Entries without a usable id are
// dropped with a warning; removing an unknown id is a no-op.
func (s *Store) ApplyBatch(updates []map[string]json.RawMessage, removed []int) BatchResult {
	var result BatchResult
	for _, update := range updates {
		id, ok := decodeID(update)
		if !ok {
			result.Dropped++
			s.logger.Warn("dropping torrent update without id", logging.F("fields", len(update)))
			continue
		}
		tor, known := s.torrents[id]
		if !known {
			tor = types.NewTorrent(id)
			s.torrents[id] = tor
			if _, err := tor.Merge(update); err != nil {
				s.logger.Warn("torrent fields ignored", logging.F("id", id), logging.F("error", err))
			}
			s.dirty[id] = struct{}{}
			result.Added = append(result.Added, id)
			if !tor.Has(types.FieldName) || !tor.Has(types.FieldStatus) {
				result.NeedInfo = append(result.NeedInfo, id)
			}
			continue
		}
		neededMeta := tor.NeedsMetaData()
		changed, err := tor.Merge(update)
		if err != nil {
			s.logger.Warn("torrent fields ignored", logging.F("id", id), logging.F("error", err))
		}
		if changed {
			s.dirty[id] = struct{}{}
			result.Changed = append(result.Changed, id)
		}
		if neededMeta && !tor.NeedsMetaData() {
			result.NeedInfo = append(result.NeedInfo, id)
		}
	}
	for _, id := range removed {
		if _, ok := s.torrents[id]; !ok {
			continue
		}
		delete(s.torrents, id)
		s.dirty[id] = struct{}{}
		result.Removed = append(result.Removed, id)
	}
	return result
}

func decodeID(update map[string]json.RawMessage) (int, bool) {
	raw, ok := update[types.FieldID]
	if !ok {
		return 0, false
	}
	var id int
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, false
	}
	return id, true
}

// TakeDirty returns the accumulated dirty set and starts a new one.
func (s *Store) TakeDirty() map[int]struct{} {
	dirty := s.dirty
	s.dirty = map[int]struct{}{}
	return dirty
}

func (s *Store) DirtyLen() int {
	return len(s.dirty)
}

func (s *Store) MarkDirty(ids ...int) {
	for _, id := range ids {
		s.dirty[id] = struct{}{}
	}
}

func (s *Store) MarkAllDirty() {
	for id := range s.torrents {
		s.dirty[id] = struct{}{}
	}
}

func (s *Store) Get(id int) (*types.Torrent, bool) {
	tor, ok := s.torrents[id]
	return tor, ok
}

func (s *Store) Len() int {
	return len(s.torrents)
}

// All returns the torrents ordered by id.
func (s *Store) All() []*types.Torrent {
	out := make([]*types.Torrent, 0, len(s.torrents))
	for _, tor := range s.torrents {
		out = append(out, tor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reset forgets every torrent, marking each id dirty so the view drops it.
func (s *Store) Reset() {
	for id := range s.torrents {
		s.dirty[id] = struct{}{}
	}
	s.torrents = map[int]*types.Torrent{}
}

// Groups counts torrents per tracker domain.
func (s *Store) Groups() map[string]int {
	out := map[string]int{}
	for _, tor := range s.torrents {
		for _, group := range tor.Groups() {
			out[group]++
		}
	}
	return out
}

// Speeds sums transfer rates over every known torrent.
func (s *Store) Speeds() (up, down int64) {
	for _, tor := range s.torrents {
		up += tor.UploadRate()
		down += tor.DownloadRate()
	}
	return up, down
}
