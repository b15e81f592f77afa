package cache

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic dedup identity
	"encoding/hex"
	"time"
)

// DefaultRetention is how long a seen article stays in the cache.
const DefaultRetention = 7 * 24 * time.Hour

// Entry records one accepted article. Entries are never mutated; they age
// out of the store relative to FetchedAt.
type Entry struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	SourceName  string    `json:"source_name"`
	FetchedAt   time.Time `json:"fetched_at"`
	PublishedAt string    `json:"published_at"`
}

// Fingerprint derives the dedup identity of an article from its title and
// link. Summary and category drift between fetches of the same item, so they
// stay out of the hash.
func Fingerprint(title, link string) string {
	sum := sha1.Sum([]byte(title + link))
	return hex.EncodeToString(sum[:])
}

// Store is the dedup cache contract. A store is loaded once per aggregation
// pass, marked in memory during the pass, and flushed once at the end; no
// concurrent writers are assumed.
type Store interface {
	// Load reads persisted state, evicting entries older than the retention
	// window. Unreadable state is recovered as an empty cache, never an error.
	Load() error
	IsSeen(fingerprint string) bool
	MarkSeen(fingerprint string, entry Entry)
	// Save persists the full in-memory state.
	Save() error
	Close() error
}
