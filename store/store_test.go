package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	persisted, err := NewPersistedStore(filepath.Join(dir, "cache.db"), 0600, "cache")
	if err != nil {
		t.Fatal(err)
	}
	sqlite, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}

	stores := map[string]Store{
		Memory:    NewMemoryStore(),
		Persisted: persisted,
		SQLite:    sqlite,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStore_PutGet(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put("greeting", `{"hello":"world"}`); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get("greeting")
			if err != nil {
				t.Fatal(err)
			}
			if got != `{"hello":"world"}` {
				t.Errorf("Get = %q", got)
			}

			if err := s.Put("greeting", "second"); err != nil {
				t.Fatal(err)
			}
			got, _ = s.Get("greeting")
			if got != "second" {
				t.Errorf("Get after overwrite = %q", got)
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("missing")
			if !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("err = %v, want ErrKeyNotFound", err)
			}
		})
	}
}

func TestStore_DeleteAndKeys(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"b", "a", "c"} {
				if err := s.Put(k, k); err != nil {
					t.Fatal(err)
				}
			}
			if err := s.Delete("b"); err != nil {
				t.Fatal(err)
			}
			// deleting twice is a no-op
			if err := s.Delete("b"); err != nil {
				t.Fatal(err)
			}

			keys, err := s.Keys()
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(keys, []string{"a", "c"}) {
				t.Errorf("Keys = %v", keys)
			}
		})
	}
}

func TestPersistedStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewPersistedStore(path, 0600, "cache")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put("k", "v"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewPersistedStore(path, 0600, "cache")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get("k")
	if err != nil || got != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestNew_Unsupported(t *testing.T) {
	if _, err := New("redis", "", ""); err == nil {
		t.Error("expected error for unsupported store type")
	}
}
