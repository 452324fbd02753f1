// Package cache persists parsed analyzer results between runs. Entries are
// content-addressed: the key covers the analyzer configuration and the
// digests of the analyzed files, so any change to either misses. Only
// completed runs are stored, never history or trends.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/felixgeelhaar/lintgate/internal/adapter"
	"github.com/felixgeelhaar/lintgate/internal/errors"
	"github.com/felixgeelhaar/lintgate/internal/finding"
)

var bucketResults = []byte("results")

// Entry is one cached analyzer run: the run record and its parsed findings.
type Entry struct {
	Run       adapter.Run       `json:"run"`
	Findings  []finding.Finding `json:"findings,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store is a bbolt-backed result cache.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the cache database at path, creating parent
// directories as needed. The bbolt file lock means only one process can
// hold the cache; Open gives up after a second rather than blocking a run.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewCacheOpenError(path, err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.NewCacheOpenError(path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResults)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.NewCacheOpenError(path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database and its file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the entry stored under key. A miss is (nil, false, nil);
// an entry that no longer decodes is reported as a CACHE-002 error so the
// caller can fall back to a fresh run.
func (s *Store) Get(key string) (*Entry, bool, error) {
	var entry Entry
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketResults).Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return errors.NewCacheCorruptError(key, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores entry under key, stamping CreatedAt when unset.
func (s *Store) Put(key string, entry *Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Put([]byte(key), data)
	})
}

// Clean drops every cached result and returns how many were removed.
func (s *Store) Clean() (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		removed = tx.Bucket(bucketResults).Stats().KeyN
		if err := tx.DeleteBucket(bucketResults); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketResults)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Stats describes the cache contents.
type Stats struct {
	Path    string    `json:"path"`
	Entries int       `json:"entries"`
	Size    int64     `json:"size_bytes"`
	Oldest  time.Time `json:"oldest"`
	Newest  time.Time `json:"newest"`
}

// Stats reports the entry count, the database file size and the age range
// of the stored entries. Entries that no longer decode are not counted.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{Path: s.path}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketResults).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			stats.Entries++
			if stats.Oldest.IsZero() || entry.CreatedAt.Before(stats.Oldest) {
				stats.Oldest = entry.CreatedAt
			}
			if entry.CreatedAt.After(stats.Newest) {
				stats.Newest = entry.CreatedAt
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if info, statErr := os.Stat(s.path); statErr == nil {
		stats.Size = info.Size()
	}
	return stats, nil
}
