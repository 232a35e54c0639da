// Package cache persists extracted revision histories between runs.
// Walking a large repository log dominates analysis time; the history only
// changes when HEAD moves, so it is cached keyed on repository path and
// head hash.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/evolens/evolens/pkg/revision"
)

// Cache is a file-backed store of extracted revision streams.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is one stored history with its integrity hash.
type Entry struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache rooted at dir. A disabled cache is a no-op on every
// operation, so callers never branch on the flag themselves.
func New(dir string, ttl time.Duration, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, enabled: true}, nil
}

// RevisionKey identifies one repository's history at one head commit.
func RevisionKey(repoPath, head string) string {
	return fmt.Sprintf("revlog:%s@%s", repoPath, head)
}

// HashBytes computes a BLAKE3 content hash as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// StoreRevisions caches an extracted history under the given key.
func (c *Cache) StoreRevisions(key string, revs []revision.Revision) error {
	if !c.enabled {
		return nil
	}
	data, err := json.Marshal(revs)
	if err != nil {
		return err
	}
	entry := Entry{
		Hash:      HashBytes(data),
		Timestamp: time.Now(),
		Data:      data,
	}
	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), entryData, 0600)
}

// LoadRevisions returns the cached history for the key, if present, fresh,
// and intact. A corrupt or expired entry is removed and reported as a miss.
func (c *Cache) LoadRevisions(key string) ([]revision.Revision, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		os.Remove(path)
		return nil, false
	}
	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}
	if HashBytes(entry.Data) != entry.Hash {
		os.Remove(path)
		return nil, false
	}

	var revs []revision.Revision
	if err := json.Unmarshal(entry.Data, &revs); err != nil {
		os.Remove(path)
		return nil, false
	}
	return revs, true
}

// Invalidate removes one entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath maps a key to a filename. xxhash is enough here: the name only
// needs to be stable and filesystem-safe, integrity is the entry's BLAKE3
// hash.
func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", xxhash.Sum64String(key)))
}

// Stats summarizes what is on disk.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
