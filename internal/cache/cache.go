// Package cache keeps file digests between runs so unchanged files are not
// read again. An entry is only reused while the file's size and
// modification time match what was recorded.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultMaxAge is how long an entry survives without being looked up.
const DefaultMaxAge = 30 * 24 * time.Hour

// Exported variables.
var (
	ErrCorrupt           = errors.New("hash cache is unreadable")
	ErrAlgorithmMismatch = errors.New("hash cache was written for another algorithm")
)

// Entry is the recorded digest of one file.
type Entry struct {
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	Digest   string    `json:"digest"`
	LastSeen time.Time `json:"last_seen"`
}

// HashCache is a digest cache backed by one JSON file. It is safe for
// concurrent use by fingerprint workers.
type HashCache struct {
	path      string
	algorithm string
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
	dirty   bool
}

type cacheFile struct {
	Algorithm string            `json:"algorithm"`
	SavedAt   time.Time         `json:"saved_at"`
	Entries   map[string]*Entry `json:"entries"`
}

// DefaultDir returns the per-user directory cache files live in.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}

	return filepath.Join(base, "dupes"), nil
}

// FileName names the cache file for one filesystem endpoint and algorithm,
// so local and remote trees never share entries.
func FileName(endpoint, algorithm string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return fmt.Sprintf("hashes-%x-%s.json", sum[:8], algorithm)
}

// Load reads the cache at path. A missing file gives an empty cache.
// An unreadable file or one written for another algorithm also gives an
// empty cache, together with an error the caller may log and ignore.
func Load(path, algorithm string) (*HashCache, error) {
	cache := &HashCache{
		path:      path,
		algorithm: algorithm,
		now:       time.Now,
		entries:   make(map[string]*Entry),
	}

	data, err := os.ReadFile(path) // #nosec G304 - path chosen by the user or DefaultDir
	if errors.Is(err, fs.ErrNotExist) {
		return cache, nil
	}

	if err != nil {
		return cache, fmt.Errorf("failed to read hash cache %s: %w", path, err)
	}

	var stored cacheFile

	err = json.Unmarshal(data, &stored)
	if err != nil {
		return cache, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}

	if stored.Algorithm != algorithm {
		return cache, fmt.Errorf("%w: %s has %q, want %q", ErrAlgorithmMismatch, path, stored.Algorithm, algorithm)
	}

	if stored.Entries != nil {
		cache.entries = stored.Entries
	}

	return cache, nil
}

// WithClock replaces the clock used to stamp entries.
func (c *HashCache) WithClock(now func() time.Time) *HashCache {
	c.now = now
	return c
}

// Len returns the number of entries.
func (c *HashCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Lookup returns the digest recorded for path if the file still has the
// same size and modification time.
func (c *HashCache) Lookup(path string, size int64, modTime time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || entry.Size != size || !entry.ModTime.Equal(modTime) {
		return "", false
	}

	entry.LastSeen = c.now()
	c.dirty = true

	return entry.Digest, true
}

// Store records the digest of path.
func (c *HashCache) Store(path string, size int64, modTime time.Time, digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &Entry{Size: size, ModTime: modTime, Digest: digest, LastSeen: c.now()}
	c.dirty = true
}

// Forget drops the entry for path, e.g. after the file was removed.
func (c *HashCache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[path]; ok {
		delete(c.entries, path)
		c.dirty = true
	}
}

// Prune drops entries not seen within maxAge and returns how many went.
func (c *HashCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-maxAge)
	pruned := 0

	for path, entry := range c.entries {
		if entry.LastSeen.Before(cutoff) {
			delete(c.entries, path)
			pruned++
		}
	}

	if pruned > 0 {
		c.dirty = true
	}

	return pruned
}

// Save writes the cache back if anything changed. The file is replaced
// atomically so a crash never leaves a truncated cache.
func (c *HashCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := json.Marshal(cacheFile{Algorithm: c.algorithm, SavedAt: c.now(), Entries: c.entries})
	if err != nil {
		return fmt.Errorf("failed to encode hash cache: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(c.path), 0o750) //nolint:mnd // user-only cache directory
	if err != nil {
		return fmt.Errorf("failed to create cache directory for %s: %w", c.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".hashes-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write hash cache %s: %w", c.path, err)
	}

	_, err = tmp.Write(data)
	closeErr := tmp.Close()

	if err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), c.path)
	}

	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write hash cache %s: %w", c.path, err)
	}

	c.dirty = false

	return nil
}
