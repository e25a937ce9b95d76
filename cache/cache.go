// Package cache is a persistent key/value cache with per-entry expiry.
//
// Entries are kept in a store.Store under the "cache_" namespace, so the same
// substrate can hold unrelated data. Expired entries are removed lazily when
// read; there is no background sweep. Backend and decoding failures are logged
// and reported as misses: the cache never breaks its caller.
package cache

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolio/store"
)

const (
	// Prefix of every storage key owned by the cache
	Prefix = "cache_"

	// DefaultTTL matches the weekly remote call budget.
	DefaultTTL = 7 * 24 * time.Hour
)

// Entry is the decoded form of a stored cache entry.
type Entry[T any] struct {
	Data      T
	CreatedAt time.Time
	ExpiresAt time.Time
}

// persisted shape, epoch milliseconds
type persistedEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresAt int64           `json:"expiresAt"`
}

type Cache struct {
	backend store.Store
	now     func() time.Time
	logger  zerolog.Logger
}

type Option func(*Cache)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func New(backend store.Store, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		now:     time.Now,
		logger:  log.Logger.With().Str("component", "cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StorageKey returns the namespaced key used in the backend.
func StorageKey(key string) string {
	return Prefix + key
}

// Get decodes the live payload stored for key into out and reports whether
// it did. Missing, expired and undecodable entries are all misses; an expired
// entry is deleted as a side effect.
func (c *Cache) Get(key string, out any) bool {
	entry, ok := c.read(key)
	if !ok {
		return false
	}

	if c.now().UnixMilli() >= entry.ExpiresAt {
		c.logger.Debug().Str("key", key).Msg("cache entry expired")
		c.Remove(key)
		return false
	}

	if err := json.Unmarshal(entry.Data, out); err != nil {
		c.logger.Err(err).Str("key", key).Msg("failed to decode cached payload")
		return false
	}
	return true
}

// Has reports whether a live entry exists for key.
func (c *Cache) Has(key string) bool {
	var discard json.RawMessage
	return c.Get(key, &discard)
}

// Load is the typed form of Get.
func Load[T any](c *Cache, key string) (T, bool) {
	var value T
	if !c.Get(key, &value) {
		var zero T
		return zero, false
	}
	return value, true
}

// Set stores data for key with the default TTL, replacing any prior entry.
func (c *Cache) Set(key string, data any) {
	c.SetWithTTL(key, data, DefaultTTL)
}

// SetWithTTL stores data for key with an explicit TTL. A non positive TTL
// falls back to DefaultTTL.
func (c *Cache) SetWithTTL(key string, data any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	// storage precision is one millisecond and expiresAt must stay after createdAt
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	payload, err := json.Marshal(data)
	if err != nil {
		c.logger.Err(err).Str("key", key).Msg("failed to encode cache payload")
		return
	}

	now := c.now()
	raw, err := json.Marshal(persistedEntry{
		Data:      payload,
		Timestamp: now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	})
	if err != nil {
		c.logger.Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}

	if err := c.backend.Put(StorageKey(key), string(raw)); err != nil {
		c.logger.Err(err).Str("key", key).Msg("cache set error")
	}
}

// Remove deletes the entry for key, if any.
func (c *Cache) Remove(key string) {
	if err := c.backend.Delete(StorageKey(key)); err != nil {
		c.logger.Err(err).Str("key", key).Msg("cache remove error")
	}
}

// ClearAll removes every entry created by the cache and leaves other keys of
// the backend alone.
func (c *Cache) ClearAll() {
	keys, err := c.backend.Keys()
	if err != nil {
		c.logger.Err(err).Msg("cache clear error")
		return
	}

	for _, k := range keys {
		if !strings.HasPrefix(k, Prefix) {
			continue
		}
		if err := c.backend.Delete(k); err != nil {
			c.logger.Err(err).Str("key", k).Msg("cache clear error")
		}
	}
}

// Metadata returns the age of the entry for key and the time left before it
// expires (negative once expired). It does not evict.
func (c *Cache) Metadata(key string) (age time.Duration, expiresIn time.Duration, ok bool) {
	entry, ok := c.read(key)
	if !ok {
		return 0, 0, false
	}
	now := c.now().UnixMilli()
	age = time.Duration(now-entry.Timestamp) * time.Millisecond
	expiresIn = time.Duration(entry.ExpiresAt-now) * time.Millisecond
	return age, expiresIn, true
}

// Peek returns the raw entry for key without checking expiry.
func (c *Cache) Peek(key string) (Entry[json.RawMessage], bool) {
	entry, ok := c.read(key)
	if !ok {
		return Entry[json.RawMessage]{}, false
	}
	return Entry[json.RawMessage]{
		Data:      entry.Data,
		CreatedAt: time.UnixMilli(entry.Timestamp),
		ExpiresAt: time.UnixMilli(entry.ExpiresAt),
	}, true
}

func (c *Cache) read(key string) (persistedEntry, bool) {
	raw, err := c.backend.Get(StorageKey(key))
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			c.logger.Err(err).Str("key", key).Msg("cache get error")
		}
		return persistedEntry{}, false
	}

	var entry persistedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("corrupted cache entry, treating as miss")
		return persistedEntry{}, false
	}
	return entry, true
}
