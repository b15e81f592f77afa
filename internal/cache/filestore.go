package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// FileStore persists the seen set as one JSON object keyed by fingerprint.
// The file is rewritten whole on every Save; there is no append log.
type FileStore struct {
	path      string
	retention time.Duration
	log       logger.Logger
	now       func() time.Time
	entries   map[string]Entry
}

// NewFileStore builds a JSON snapshot store at path. A non-positive
// retention falls back to DefaultRetention.
func NewFileStore(path string, retention time.Duration, log logger.Logger) *FileStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &FileStore{
		path:      path,
		retention: retention,
		log:       log,
		now:       time.Now,
		entries:   make(map[string]Entry),
	}
}

// Load reads the snapshot, drops entries past retention, and immediately
// rewrites the pruned set so a stale or corrupt file heals itself. A missing
// or unreadable file starts an empty cache.
func (s *FileStore) Load() error {
	s.entries = make(map[string]Entry)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.log.InfoObj("starting new dedup cache", "cache_new", map[string]any{
			"path":   s.path,
			"reason": err.Error(),
		})
		return nil
	}

	var loaded map[string]Entry
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.log.WarnObj("dedup cache unreadable, resetting", "cache_corrupt", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil
	}

	cutoff := s.now().Add(-s.retention)
	evicted := 0
	for fp, entry := range loaded {
		if entry.FetchedAt.Before(cutoff) {
			evicted++
			continue
		}
		s.entries[fp] = entry
	}

	if err := s.Save(); err != nil {
		s.log.WarnObj("dedup cache rewrite failed", "cache_rewrite_error", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
	}

	s.log.DebugObj("dedup cache loaded", "cache_loaded", map[string]any{
		"path":    s.path,
		"entries": len(s.entries),
		"evicted": evicted,
	})
	return nil
}

// IsSeen reports whether the fingerprint is in the pruned seen set.
func (s *FileStore) IsSeen(fingerprint string) bool {
	_, ok := s.entries[fingerprint]
	return ok
}

// MarkSeen records the entry in memory. It is persisted on the next Save.
func (s *FileStore) MarkSeen(fingerprint string, entry Entry) {
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = s.now()
	}
	s.entries[fingerprint] = entry
}

// Save rewrites the whole snapshot file.
func (s *FileStore) Save() error {
	raw, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dedup cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write dedup cache: %w", err)
	}
	return nil
}

// Close is a no-op for the file-backed store.
func (s *FileStore) Close() error { return nil }
