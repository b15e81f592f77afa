package cache

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

var seenBucket = []byte("seen_articles")

// BoltStore keeps the seen set in a bbolt database. Semantics mirror
// FileStore: state is loaded and pruned once, mutated in memory, and flushed
// once per pass.
type BoltStore struct {
	db        *bolt.DB
	retention time.Duration
	log       logger.Logger
	now       func() time.Time
	entries   map[string]Entry
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string, retention time.Duration, log logger.Logger) (*BoltStore, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache: %w", err)
	}

	return &BoltStore{
		db:        db,
		retention: retention,
		log:       log,
		now:       time.Now,
		entries:   make(map[string]Entry),
	}, nil
}

// Load reads every entry, drops the ones past retention, and deletes the
// stale keys in the same transaction. Undecodable values are discarded the
// way a corrupt snapshot file would be.
func (s *BoltStore) Load() error {
	s.entries = make(map[string]Entry)
	cutoff := s.now().Add(-s.retention)

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(seenBucket)
		if err != nil {
			return err
		}

		var stale [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil || entry.FetchedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			s.entries[string(k)] = entry
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.WarnObj("bolt cache load failed, resetting", "cache_corrupt", map[string]any{
			"error": err.Error(),
		})
		s.entries = make(map[string]Entry)
	}

	s.log.DebugObj("dedup cache loaded", "cache_loaded", map[string]any{
		"entries": len(s.entries),
	})
	return nil
}

// IsSeen reports whether the fingerprint is in the pruned seen set.
func (s *BoltStore) IsSeen(fingerprint string) bool {
	_, ok := s.entries[fingerprint]
	return ok
}

// MarkSeen records the entry in memory. It is persisted on the next Save.
func (s *BoltStore) MarkSeen(fingerprint string, entry Entry) {
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = s.now()
	}
	s.entries[fingerprint] = entry
}

// Save writes the full in-memory state back in one transaction.
func (s *BoltStore) Save() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(seenBucket)
		if err != nil {
			return err
		}
		for fp, entry := range s.entries {
			raw, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("marshal cache entry: %w", err)
			}
			if err := bucket.Put([]byte(fp), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }
