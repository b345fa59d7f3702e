package cache

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores one file per entry under dir, sharded by the first two
// hex characters of the key hash. Each file is a small header (magic and
// expiry) followed by the raw image bytes.
type FileCache struct {
	dir string
}

const (
	entryExt   = ".entry"
	entryMagic = "PUC1"
	headerSize = len(entryMagic) + 8
)

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Get returns the entry for key. Expired and unreadable entries are removed
// and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, expires, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes the entry atomically, so concurrent readers never see a
// partial image.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(encodeEntry(data, expires)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Missing entries are not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// Dir returns the directory holding the cache entries.
func (c *FileCache) Dir() string {
	return c.dir
}

// Clear removes every entry, plus leftovers from interrupted writes, and
// returns how many entries were deleted.
func (c *FileCache) Clear() (int, error) {
	shards, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		sub := filepath.Join(c.dir, shard.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, f := range files {
			name := f.Name()
			switch {
			case f.IsDir():
			case filepath.Ext(name) == entryExt:
				if os.Remove(filepath.Join(sub, name)) == nil {
					count++
				}
			case strings.HasPrefix(name, ".tmp-"):
				_ = os.Remove(filepath.Join(sub, name))
			}
		}
		_ = os.Remove(sub) // only succeeds when empty
	}
	return count, nil
}

// path maps key to <dir>/<hash[:2]>/<hash[2:]>.entry.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+entryExt)
}

func encodeEntry(data []byte, expires time.Time) []byte {
	buf := make([]byte, headerSize, headerSize+len(data))
	copy(buf, entryMagic)
	var unix int64
	if !expires.IsZero() {
		unix = expires.UnixNano()
	}
	binary.BigEndian.PutUint64(buf[len(entryMagic):], uint64(unix))
	return append(buf, data...)
}

func decodeEntry(raw []byte) (data []byte, expires time.Time, ok bool) {
	if len(raw) < headerSize || string(raw[:len(entryMagic)]) != entryMagic {
		return nil, time.Time{}, false
	}
	if unix := int64(binary.BigEndian.Uint64(raw[len(entryMagic):headerSize])); unix != 0 {
		expires = time.Unix(0, unix)
	}
	return raw[headerSize:], expires, true
}

var _ Cache = (*FileCache)(nil)
