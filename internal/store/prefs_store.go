package store

import (
	"context"
	"strings"
	"sync"

	"tremote/internal/types"
)

// PrefsStore persists view preferences per daemon profile. The profile is
// normally the daemon base URL so two daemons keep separate sort and filter
// choices.
type PrefsStore interface {
	Load(ctx context.Context, profile string) (types.Prefs, error)
	Save(ctx context.Context, profile string, prefs types.Prefs) error
	Close() error
}

// MemoryPrefsStore is used when the database cannot be opened, e.g. while
// another instance holds the lock.
type MemoryPrefsStore struct {
	mu    sync.Mutex
	prefs map[string]types.Prefs
}

func NewMemoryPrefsStore() *MemoryPrefsStore {
	return &MemoryPrefsStore{prefs: map[string]types.Prefs{}}
}

func (s *MemoryPrefsStore) Load(ctx context.Context, profile string) (types.Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefs, ok := s.prefs[profileKey(profile)]; ok {
		return prefs, nil
	}
	return types.DefaultPrefs(), nil
}

func (s *MemoryPrefsStore) Save(ctx context.Context, profile string, prefs types.Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs.FilterText = ""
	s.prefs[profileKey(profile)] = prefs
	return nil
}

func (s *MemoryPrefsStore) Close() error {
	return nil
}

func profileKey(profile string) string {
	profile = strings.TrimRight(strings.TrimSpace(profile), "/")
	if profile == "" {
		return "default"
	}
	return profile
}

// normalizePrefs fills fields missing from older records with defaults.
func normalizePrefs(prefs types.Prefs) types.Prefs {
	defaults := types.DefaultPrefs()
	if strings.TrimSpace(prefs.SortMode) == "" {
		prefs.SortMode = defaults.SortMode
	}
	if strings.TrimSpace(prefs.SortDirection) == "" {
		prefs.SortDirection = defaults.SortDirection
	}
	if strings.TrimSpace(prefs.FilterMode) == "" {
		prefs.FilterMode = defaults.FilterMode
	}
	if prefs.DisplayMode != types.DisplayCompact {
		prefs.DisplayMode = types.DisplayFull
	}
	if prefs.RefreshRateSec <= 0 {
		prefs.RefreshRateSec = defaults.RefreshRateSec
	}
	prefs.FilterText = ""
	return prefs
}
