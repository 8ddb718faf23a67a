package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"tremote/internal/types"
)

var bucketPrefs = []byte("prefs")

type BboltPrefsStore struct {
	db *bolt.DB
}

func NewBboltPrefsStore(path string) (*BboltPrefsStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("prefs db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPrefs)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BboltPrefsStore{db: db}, nil
}

func (s *BboltPrefsStore) Load(ctx context.Context, profile string) (types.Prefs, error) {
	if err := ctx.Err(); err != nil {
		return types.Prefs{}, err
	}
	prefs := types.DefaultPrefs()
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrefs)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(profileKey(profile)))
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &prefs)
	})
	if err != nil {
		return types.Prefs{}, err
	}
	return normalizePrefs(prefs), nil
}

func (s *BboltPrefsStore) Save(ctx context.Context, profile string, prefs types.Prefs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(normalizePrefs(prefs))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrefs)
		if b == nil {
			return errors.New("prefs bucket missing")
		}
		return b.Put([]byte(profileKey(profile)), raw)
	})
}

// Profiles lists the profiles that have saved preferences.
func (s *BboltPrefsStore) Profiles(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrefs)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

func (s *BboltPrefsStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// OpenPrefsStore opens the bbolt store at path and falls back to an
// in-memory store when the file is unavailable. The returned error reports
// the fallback reason and is nil when the database opened.
func OpenPrefsStore(path string) (PrefsStore, error) {
	db, err := NewBboltPrefsStore(path)
	if err != nil {
		return NewMemoryPrefsStore(), err
	}
	return db, nil
}
