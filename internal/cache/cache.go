// Package cache provides the durable local cache backing the sync
// engine: a single-file bbolt database holding opaque values by key.
// The engine stores only the merged media item list here; folder state
// is remote-of-record and never cached.
package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// cacheDirPerm is the permission mode for the cache directory
	// (~/.media-sync/).
	cacheDirPerm = fs.FileMode(0o700)

	// cacheFilePerm is the permission mode for the cache database file.
	cacheFilePerm = fs.FileMode(0o600)

	// cacheOpenTimeout is the maximum time to wait for the bolt
	// database lock before giving up.
	cacheOpenTimeout = 5 * time.Second
)

var vaultBucket = []byte("vault")

// Cache wraps a bbolt database for persistent vault state.
type Cache struct {
	db *bolt.DB
}

// Open opens the cache database at ~/.media-sync/cache.db, creating it
// if it does not exist.
func Open() (*Cache, error) {
	return OpenAt(defaultPath())
}

// OpenAt opens a cache database at the given path, creating it if it
// does not exist. Useful for tests that need an isolated database.
func OpenAt(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), cacheDirPerm); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := bolt.Open(path, cacheFilePerm, &bolt.Options{Timeout: cacheOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(vaultBucket)

		return err
	})
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("creating vault bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".media-sync", "cache.db")
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Read returns the value stored under key. The second return value is
// false when the key is absent.
func (c *Cache) Read(key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)

	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(vaultBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}

		found = true
		value = make([]byte, len(raw))
		copy(value, raw)

		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading cache key %q: %w", key, err)
	}

	return value, found, nil
}

// Write stores value under key, replacing any previous value.
func (c *Cache) Write(key string, value []byte) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(vaultBucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("writing cache key %q: %w", key, err)
	}

	return nil
}

// Delete removes key from the cache. Deleting an absent key is not an
// error.
func (c *Cache) Delete(key string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(vaultBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting cache key %q: %w", key, err)
	}

	return nil
}
