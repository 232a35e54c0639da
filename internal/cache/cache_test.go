package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evolens/evolens/pkg/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRevisions() []revision.Revision {
	return []revision.Revision{
		{ID: "r1", Author: "alice", Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Changes: []revision.Change{{Entity: "a.go", Added: 10, Deleted: 2}}},
	}
}

func TestStoreAndLoadRoundTrip(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour, true)
	require.NoError(t, err)

	key := RevisionKey("/repo", "abc123")
	require.NoError(t, c.StoreRevisions(key, sampleRevisions()))

	got, ok := c.LoadRevisions(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, 10, got[0].Changes[0].Added)
}

func TestLoadMissesUnknownKey(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour, true)
	require.NoError(t, err)

	_, ok := c.LoadRevisions(RevisionKey("/repo", "nope"))
	assert.False(t, ok)
}

func TestExpiredEntryIsRemoved(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, time.Hour, true)
	require.NoError(t, err)

	key := RevisionKey("/repo", "abc")
	require.NoError(t, c.StoreRevisions(key, sampleRevisions()))

	// Rewrite the entry with an old timestamp.
	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry Entry
	require.NoError(t, json.Unmarshal(data, &entry))
	entry.Timestamp = time.Now().Add(-2 * time.Hour)
	data, err = json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	_, ok := c.LoadRevisions(key)
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "expired entry removed from disk")
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, time.Hour, true)
	require.NoError(t, err)

	key := RevisionKey("/repo", "abc")
	require.NoError(t, c.StoreRevisions(key, sampleRevisions()))

	// Flip the payload without fixing the hash.
	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry Entry
	require.NoError(t, json.Unmarshal(data, &entry))
	entry.Data = []byte(`[]`)
	data, err = json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	_, ok := c.LoadRevisions(key)
	assert.False(t, ok)
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c, err := New("", time.Hour, false)
	require.NoError(t, err)

	key := RevisionKey("/repo", "abc")
	require.NoError(t, c.StoreRevisions(key, sampleRevisions()))
	_, ok := c.LoadRevisions(key)
	assert.False(t, ok)
	require.NoError(t, c.Invalidate(key))
	require.NoError(t, c.Clear())
}

func TestInvalidateAndClear(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, time.Hour, true)
	require.NoError(t, err)

	key := RevisionKey("/repo", "abc")
	require.NoError(t, c.StoreRevisions(key, sampleRevisions()))
	require.NoError(t, c.Invalidate(key))
	_, ok := c.LoadRevisions(key)
	assert.False(t, ok)

	require.NoError(t, c.StoreRevisions(key, sampleRevisions()))
	require.NoError(t, c.Clear())
	entries, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	assert.Empty(t, entries)
}

func TestGetStats(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour, true)
	require.NoError(t, err)

	require.NoError(t, c.StoreRevisions(RevisionKey("/a", "1"), sampleRevisions()))
	require.NoError(t, c.StoreRevisions(RevisionKey("/b", "2"), sampleRevisions()))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Positive(t, stats.TotalSize)
}
