package store

import (
	"fmt"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu sync.RWMutex
	Db map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Db: map[string]string{}}
}

func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.Db))
	for key := range s.Db {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, found := s.Db[key]
	if !found {
		return "", fmt.Errorf("item with key %s: %w", key, ErrKeyNotFound)
	}
	return value, nil
}

func (s *MemoryStore) Put(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Db[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Db, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
