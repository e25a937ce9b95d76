package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"portfolio/record"
	"portfolio/store"
)

var ErrNotFound = errors.New("record not found")

// Repository keeps the records of one kind in a store.Store, one JSON value
// per record under "<kind>/<id>".
type Repository[T record.Record] struct {
	Kind string
	Db   store.Store
	Now  func() time.Time

	mu sync.Mutex
}

func NewRepository[T record.Record](kind string, db store.Store) *Repository[T] {
	return &Repository[T]{Kind: kind, Db: db, Now: time.Now}
}

func (r *Repository[T]) key(id int64) string {
	return fmt.Sprintf("%s/%d", r.Kind, id)
}

func (r *Repository[T]) seqKey() string {
	return "_seq/" + r.Kind
}

// List returns every record, most recent first.
func (r *Repository[T]) List() ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, err := r.Db.Keys()
	if err != nil {
		return nil, err
	}

	items := []T{}
	prefix := r.Kind + "/"
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		raw, err := r.Db.Get(k)
		if err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].GetID() > items[j].GetID()
	})
	return items, nil
}

func (r *Repository[T]) Get(id int64) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *Repository[T]) Create(draft T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.nextID()
	if err != nil {
		return draft, err
	}
	item, err := record.Stamp(draft, id, r.Now())
	if err != nil {
		return item, err
	}
	return item, r.put(item)
}

func (r *Repository[T]) Update(id int64, patch record.Patch) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.get(id)
	if err != nil {
		return item, err
	}
	// id and creation time are owned by the repository
	delete(patch, "id")
	delete(patch, "created_at")
	item, err = record.Touch(item, patch, r.Now())
	if err != nil {
		return item, err
	}
	return item, r.put(item)
}

func (r *Repository[T]) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.get(id); err != nil {
		return err
	}
	return r.Db.Delete(r.key(id))
}

// Seed stores items as they are and moves the id sequence past them.
func (r *Repository[T]) Seed(items []T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var max int64
	for _, item := range items {
		if err := r.put(item); err != nil {
			return err
		}
		if item.GetID() > max {
			max = item.GetID()
		}
	}
	return r.Db.Put(r.seqKey(), strconv.FormatInt(max, 10))
}

func (r *Repository[T]) get(id int64) (T, error) {
	var item T
	raw, err := r.Db.Get(r.key(id))
	if errors.Is(err, store.ErrKeyNotFound) {
		return item, fmt.Errorf("%s %d: %w", r.Kind, id, ErrNotFound)
	}
	if err != nil {
		return item, err
	}
	err = json.Unmarshal([]byte(raw), &item)
	return item, err
}

func (r *Repository[T]) put(item T) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.Db.Put(r.key(item.GetID()), string(raw))
}

func (r *Repository[T]) nextID() (int64, error) {
	var last int64
	raw, err := r.Db.Get(r.seqKey())
	switch {
	case err == nil:
		last, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupted id sequence for %s: %w", r.Kind, err)
		}
	case !errors.Is(err, store.ErrKeyNotFound):
		return 0, err
	}

	next := last + 1
	return next, r.Db.Put(r.seqKey(), strconv.FormatInt(next, 10))
}
