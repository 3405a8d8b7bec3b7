package cache

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// FileCache implements Store using one JSON file per key
type FileCache struct {
	dir    string
	maxAge time.Duration
}

// NewFileCache creates a file-based cache rooted at dir. Entries older than
// maxAge are treated as misses; zero keeps entries forever.
func NewFileCache(dir string, maxAge time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, maxAge: maxAge}, nil
}

// Dir returns the directory entries are stored in
func (fc *FileCache) Dir() string {
	return fc.dir
}

// Get implements httpcache.Cache
func (fc *FileCache) Get(key string) ([]byte, bool) {
	entry, ok := fc.Entry(key)
	if !ok {
		return nil, false
	}
	if fc.maxAge > 0 && time.Since(entry.FetchedAt) > fc.maxAge {
		fc.Delete(key)
		return nil, false
	}
	return entry.Body, true
}

// Set implements httpcache.Cache. Write failures leave the previous entry in place.
func (fc *FileCache) Set(key string, body []byte) {
	_ = fc.write(&Entry{Key: key, FetchedAt: time.Now(), Body: body})
}

// Delete implements httpcache.Cache
func (fc *FileCache) Delete(key string) {
	_ = os.Remove(fc.path(key))
}

// Entry reads an entry without applying maxAge
func (fc *FileCache) Entry(key string) (*Entry, bool) {
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	// md5-named files could collide in theory
	if entry.Key != key {
		return nil, false
	}
	return &entry, true
}

func (fc *FileCache) write(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// Write to temporary file first, then rename (atomic operation)
	path := fc.path(entry.Key)
	tmpPath := path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// path generates the full filesystem path for a cache key
func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, FileName(key))
}
