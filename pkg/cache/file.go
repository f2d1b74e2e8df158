package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache is the CLI cache. Each entry is one file under a two-level
// hashed directory layout, holding a small header and the raw payload:
//
//	"SSZ1" | expiry (unix nanos, big endian, 0 = never) | payload
//
// Payloads are mostly compressed Packages indexes of several megabytes,
// so they are stored as-is rather than inside a text encoding.
type FileCache struct {
	dir string
	now func() time.Time
}

var _ Cache = (*FileCache)(nil)

var fileMagic = []byte("SSZ1")

const fileHeaderLen = 4 + 8

// NewFileCache creates a file-based cache in dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache root directory.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the payload for key. Expired and unreadable entries are
// removed and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, ok := c.decode(raw)
	if !ok {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes key atomically; readers never observe a partial entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, fileHeaderLen, fileHeaderLen+len(data))
	copy(buf, fileMagic)
	binary.BigEndian.PutUint64(buf[4:], uint64(expires))
	buf = append(buf, data...)

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. A missing key is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op; FileCache holds no open handles between calls.
func (c *FileCache) Close() error { return nil }

// Clear removes every entry and returns how many there were. The root
// directory itself is kept.
func (c *FileCache) Clear() (int, error) {
	return c.sweep(func(string) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many it
// removed.
func (c *FileCache) Prune() (int, error) {
	return c.sweep(func(path string) bool {
		raw, err := os.ReadFile(path)
		if err != nil {
			return true
		}
		_, ok := c.decode(raw)
		return !ok
	})
}

// sweep deletes every entry file for which drop returns true, then
// removes shard directories left empty.
func (c *FileCache) sweep(drop func(path string) bool) (int, error) {
	shards, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, shard := range shards {
		shardPath := filepath.Join(c.dir, shard.Name())
		if !shard.IsDir() {
			if err := os.Remove(shardPath); err != nil {
				return removed, err
			}
			continue
		}
		entries, err := os.ReadDir(shardPath)
		if err != nil {
			return removed, err
		}
		kept := len(entries)
		for _, e := range entries {
			p := filepath.Join(shardPath, e.Name())
			if !drop(p) {
				continue
			}
			if err := os.RemoveAll(p); err != nil {
				return removed, err
			}
			removed++
			kept--
		}
		if kept == 0 {
			_ = os.Remove(shardPath)
		}
	}
	return removed, nil
}

func (c *FileCache) decode(raw []byte) ([]byte, bool) {
	if len(raw) < fileHeaderLen || !bytes.Equal(raw[:4], fileMagic) {
		return nil, false
	}
	expires := int64(binary.BigEndian.Uint64(raw[4:fileHeaderLen]))
	if expires != 0 && c.now().UnixNano() > expires {
		return nil, false
	}
	return raw[fileHeaderLen:], true
}

// path maps key to <dir>/<first two hex chars>/<rest of the hash>.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:])
}
