// Package cache stores finished build artifacts on disk, keyed by a hash of
// everything that went into producing them.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// EntryFilename is the file holding an entry inside its key directory.
const EntryFilename = "descriptor.json"

// Cache is a directory of JSON entries. It is safe for concurrent use by
// multiple goroutines and processes: entries are written to a temporary file
// and renamed into place, so readers never observe a partial entry.
type Cache struct {
	dir string
}

// Open returns a cache rooted at dir, creating the directory if needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

// Key returns the hex BLAKE2b-256 digest of parts. Each part is length
// prefixed so that ("ab", "c") and ("a", "bc") hash differently.
func Key(parts ...[]byte) string {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key, EntryFilename)
}

// Load decodes the entry stored under key into v. It reports false, with a
// nil error, when there is no such entry.
func (c *Cache) Load(key string, v any) (bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Debug("ignoring corrupt cache entry", "key", key, "err", err)
		return false, nil
	}
	slog.Debug("cache hit", "key", key)
	return true, nil
}

// Store writes v under key, replacing any previous entry.
func (c *Cache) Store(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	dir := filepath.Join(c.dir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache entry %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, EntryFilename+".*")
	if err != nil {
		return fmt.Errorf("creating cache entry %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Remove deletes the entry stored under key, if any.
func (c *Cache) Remove(key string) error {
	return os.RemoveAll(filepath.Join(c.dir, key))
}
