package cache

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"portfolio/store"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(t *testing.T) (*Cache, *store.MemoryStore, *fakeClock) {
	t.Helper()
	backend := store.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	return New(backend, WithClock(clock.Now)), backend, clock
}

type sample struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestCache_RoundTrip(t *testing.T) {
	c, _, _ := newTestCache(t)

	tests := map[string]struct {
		data any
		ttl  time.Duration
	}{
		"struct": {data: sample{ID: 1, Name: "Sunset Apartments", Price: 425000}, ttl: time.Hour},
		"slice":  {data: []sample{{ID: 1}, {ID: 2, Name: "Loft"}}, ttl: time.Minute},
		"string": {data: "hello", ttl: DefaultTTL},
		"number": {data: 42.5, ttl: time.Millisecond},
	}
	for key, tt := range tests {
		t.Run(key, func(t *testing.T) {
			c.SetWithTTL(key, tt.data, tt.ttl)

			got := reflect.New(reflect.TypeOf(tt.data))
			if !c.Get(key, got.Interface()) {
				t.Fatal("expected cache hit")
			}
			if !reflect.DeepEqual(got.Elem().Interface(), tt.data) {
				t.Errorf("Get = %#v, want %#v", got.Elem().Interface(), tt.data)
			}
		})
	}
}

func TestCache_Expiry(t *testing.T) {
	c, backend, clock := newTestCache(t)

	c.SetWithTTL("trends", []int{1, 2, 3}, time.Hour)

	clock.Advance(time.Hour - time.Millisecond)
	if !c.Has("trends") {
		t.Fatal("entry should still be live one millisecond before expiry")
	}

	clock.Advance(time.Millisecond)
	var got []int
	if c.Get("trends", &got) {
		t.Fatal("entry should be absent at expiresAt")
	}
	if _, err := backend.Get(StorageKey("trends")); !errors.Is(err, store.ErrKeyNotFound) {
		t.Errorf("expired entry left behind, err = %v", err)
	}

	// eviction is idempotent
	if c.Get("trends", &got) {
		t.Fatal("entry came back")
	}
	keys, _ := backend.Keys()
	if len(keys) != 0 {
		t.Errorf("keys = %v", keys)
	}
}

func TestCache_Overwrite(t *testing.T) {
	c, _, clock := newTestCache(t)

	c.SetWithTTL("k", "first", time.Minute)
	c.SetWithTTL("k", "second", 2*time.Hour)

	clock.Advance(time.Hour)
	got, ok := Load[string](c, "k")
	if !ok || got != "second" {
		t.Errorf("Load = %q, %v", got, ok)
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	c, _, clock := newTestCache(t)
	start := clock.Now()

	c.Set("properties", []sample{{ID: 1}})
	entry, ok := c.Peek("properties")
	if !ok {
		t.Fatal("entry missing")
	}
	if !entry.CreatedAt.Equal(start) {
		t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt, start)
	}
	if want := start.Add(7 * 24 * time.Hour); !entry.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", entry.ExpiresAt, want)
	}

	c.SetWithTTL("zero", 1, 0)
	entry, _ = c.Peek("zero")
	if got := entry.ExpiresAt.Sub(entry.CreatedAt); got != DefaultTTL {
		t.Errorf("zero ttl = %v, want default", got)
	}
}

func TestCache_PersistedShape(t *testing.T) {
	c, backend, clock := newTestCache(t)
	c.Set("tenants", []int{7})

	raw, err := backend.Get("cache_tenants")
	if err != nil {
		t.Fatal(err)
	}
	var shape map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &shape); err != nil {
		t.Fatal(err)
	}
	if string(shape["data"]) != "[7]" {
		t.Errorf("data = %s", shape["data"])
	}
	var ts, exp int64
	json.Unmarshal(shape["timestamp"], &ts)
	json.Unmarshal(shape["expiresAt"], &exp)
	if ts != clock.Now().UnixMilli() {
		t.Errorf("timestamp = %d", ts)
	}
	if exp-ts != 604800000 {
		t.Errorf("expiresAt - timestamp = %d", exp-ts)
	}
}

func TestCache_CorruptedEntryIsMiss(t *testing.T) {
	c, backend, _ := newTestCache(t)

	backend.Put(StorageKey("broken"), "{not json")
	backend.Put(StorageKey("wrongtype"), `{"data":"text","timestamp":1,"expiresAt":99999999999999}`)

	var out []int
	if c.Get("broken", &out) {
		t.Error("corrupted entry should be a miss")
	}
	if c.Get("wrongtype", &out) {
		t.Error("undecodable payload should be a miss")
	}
	if _, _, ok := c.Metadata("broken"); ok {
		t.Error("Metadata on corrupted entry should fail")
	}
}

func TestCache_RemoveAndClearAll(t *testing.T) {
	c, backend, _ := newTestCache(t)

	c.Set("a", 1)
	c.Set("b", 2)
	backend.Put("roi_calculator_inputs", `{"purchasePrice":1}`)

	c.Remove("a")
	c.Remove("a")
	if c.Has("a") {
		t.Error("a should be removed")
	}

	c.ClearAll()
	keys, _ := backend.Keys()
	if !reflect.DeepEqual(keys, []string{"roi_calculator_inputs"}) {
		t.Errorf("keys after ClearAll = %v", keys)
	}
}

func TestCache_Metadata(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.SetWithTTL("k", 1, 10*time.Minute)
	clock.Advance(4 * time.Minute)

	age, expiresIn, ok := c.Metadata("k")
	if !ok {
		t.Fatal("metadata missing")
	}
	if age != 4*time.Minute || expiresIn != 6*time.Minute {
		t.Errorf("age = %v, expiresIn = %v", age, expiresIn)
	}
}

type failingStore struct{}

var errQuota = errors.New("quota exceeded")

func (failingStore) Get(string) (string, error) { return "", errQuota }
func (failingStore) Put(string, string) error   { return errQuota }
func (failingStore) Delete(string) error        { return errQuota }
func (failingStore) Keys() ([]string, error)    { return nil, errQuota }
func (failingStore) Close() error               { return nil }

func TestCache_BackendFailuresAreSwallowed(t *testing.T) {
	c := New(&failingStore{})

	c.Set("k", 1)
	c.Remove("k")
	c.ClearAll()
	if c.Has("k") {
		t.Error("failing backend should report a miss")
	}
}
