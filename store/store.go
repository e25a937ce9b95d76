package store

import (
	"errors"
	"fmt"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is a synchronous string key/value substrate. Values are opaque to the
// store; callers own the encoding.
type Store interface {
	Keys() ([]string, error)
	Get(key string) (string, error)
	Put(key string, value string) error
	Delete(key string) error
	Close() error
}

// Supported store types
const (
	Memory    = "memory"
	Persisted = "persisted"
	SQLite    = "sqlite"
)

// Create a store of the given type. The path is ignored by the memory store,
// the bucket name is only used by the persisted (bbolt) store.
func New(storeType string, path string, bucket string) (Store, error) {
	switch storeType {
	case Memory:
		return NewMemoryStore(), nil
	case Persisted:
		return NewPersistedStore(path, 0600, bucket)
	case SQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
