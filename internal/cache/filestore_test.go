package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

func entryAt(title, link string, fetchedAt time.Time) Entry {
	return Entry{
		Title:     title,
		Link:      link,
		FetchedAt: fetchedAt,
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("Title", "https://example.com/a")
	assert.Equal(t, a, Fingerprint("Title", "https://example.com/a"))
	assert.Len(t, a, 40)
}

func TestFingerprintSensitiveToTitleAndLink(t *testing.T) {
	base := Fingerprint("Title", "https://example.com/a")
	assert.NotEqual(t, base, Fingerprint("Other", "https://example.com/a"))
	assert.NotEqual(t, base, Fingerprint("Title", "https://example.com/b"))
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "seen.json"), DefaultRetention, logger.NopLogger{})

	require.NoError(t, store.Load())
	assert.False(t, store.IsSeen(Fingerprint("x", "y")))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	store := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, store.Load())

	fp := Fingerprint("Title", "https://example.com/a")
	store.MarkSeen(fp, entryAt("Title", "https://example.com/a", time.Now()))
	require.NoError(t, store.Save())

	reloaded := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.IsSeen(fp))
	assert.False(t, reloaded.IsSeen(Fingerprint("Other", "https://example.com/b")))
}

func TestFileStoreEvictsExpiredOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	store := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, store.Load())

	fresh := Fingerprint("Fresh", "https://example.com/fresh")
	stale := Fingerprint("Stale", "https://example.com/stale")
	store.MarkSeen(fresh, entryAt("Fresh", "https://example.com/fresh", time.Now()))
	store.MarkSeen(stale, entryAt("Stale", "https://example.com/stale", time.Now().AddDate(0, 0, -8)))
	require.NoError(t, store.Save())

	reloaded := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.IsSeen(fresh))
	assert.False(t, reloaded.IsSeen(stale))
}

func TestFileStoreLoadRewritesPrunedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	store := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, store.Load())

	stale := Fingerprint("Stale", "https://example.com/stale")
	store.MarkSeen(stale, entryAt("Stale", "https://example.com/stale", time.Now().AddDate(0, 0, -8)))
	require.NoError(t, store.Save())

	reloaded := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, reloaded.Load())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]Entry
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Empty(t, onDisk)
}

func TestFileStoreCorruptFileResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, store.Load())
	assert.False(t, store.IsSeen(Fingerprint("x", "y")))
}

func TestFileStoreMarkSeenDefaultsFetchedAt(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "seen.json"), DefaultRetention, logger.NopLogger{})
	require.NoError(t, store.Load())

	fp := Fingerprint("Title", "https://example.com/a")
	store.MarkSeen(fp, Entry{Title: "Title", Link: "https://example.com/a"})
	assert.False(t, store.entries[fp].FetchedAt.IsZero())
}

func TestFileStoreSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "seen.json")
	store := NewFileStore(path, DefaultRetention, logger.NopLogger{})
	require.NoError(t, store.Load())

	store.MarkSeen(Fingerprint("a", "b"), entryAt("a", "b", time.Now()))
	require.NoError(t, store.Save())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
