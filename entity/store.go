package entity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"portfolio/record"
)

// Store is the state container of one entity kind.
//
// Remote calls are never serialized: overlapping writes race and the last one
// to complete wins on Items. Overlapping reads of the same key share a single
// remote call, and IsLoading stays set while any operation is in flight.
type Store[T record.Record] struct {
	cfg   Config[T]
	group singleflight.Group

	mu       sync.Mutex
	state    State[T]
	inflight int
}

func New[T record.Record](cfg Config[T]) (*Store[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.ListKey == "" {
		cfg.ListKey = cfg.Kind
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store[T]{
		cfg:   cfg,
		state: State[T]{Items: []T{}},
	}, nil
}

func (s *Store[T]) Kind() string {
	return s.cfg.Kind
}

func (s *Store[T]) ListKey() string {
	return s.cfg.ListKey
}

func (s *Store[T]) ReadPolicy() Policy {
	return s.cfg.ReadPolicy
}

func (s *Store[T]) WritePolicy() Policy {
	return s.cfg.WritePolicy
}

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Items = slices.Clone(s.state.Items)
	if s.state.Selected != nil {
		selected := *s.state.Selected
		st.Selected = &selected
	}
	return st
}

func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Items)
}

// Select makes the local record with the given id the selection.
func (s *Store[T]) Select(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		selected := s.state.Items[i]
		s.state.Selected = &selected
		return true
	}
	return false
}

func (s *Store[T]) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = nil
}

// FetchAll loads every record of the kind. Unless force is set, a live cache
// entry is adopted without calling the remote.
func (s *Store[T]) FetchAll(ctx context.Context, force bool) ([]T, error) {
	if !force {
		var cached []T
		if s.cfg.Cache.Get(s.cfg.ListKey, &cached) {
			s.mu.Lock()
			s.state.Items = cached
			s.mu.Unlock()
			return slices.Clone(cached), nil
		}
	}

	v, err, _ := s.group.Do("all", func() (any, error) {
		return s.fetchAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]T)), nil
}

func (s *Store[T]) fetchAll(ctx context.Context) ([]T, error) {
	opLogger := s.opLogger("fetch-all")
	done := s.begin()
	defer done()

	items, err := s.cfg.Source.ListAll(ctx)
	if err != nil {
		if aborted(ctx, err) {
			opLogger.Debug().Err(err).Msg("fetch abandoned by caller")
			return nil, fmt.Errorf("fetch %s list: %w", s.cfg.Kind, err)
		}
		if s.cfg.ReadPolicy == Strict {
			opLogger.Err(err).Msg("failed to fetch records")
			return nil, s.fail(fmt.Sprintf("failed to fetch %s list", s.cfg.Kind), err)
		}

		opLogger.Warn().Err(err).Msg("remote unavailable, using synthetic records")
		items = s.cfg.Generate(s.cfg.Now())
	}

	s.mu.Lock()
	s.state.Items = slices.Clone(items)
	s.state.LastError = ""
	if err == nil {
		s.state.LastFetched = s.cfg.Now()
	}
	s.mu.Unlock()

	s.cfg.Cache.Set(s.cfg.ListKey, items)
	opLogger.Debug().Int("count", len(items)).Msg("records adopted")
	return items, nil
}

// FetchOne loads one record and selects it.
func (s *Store[T]) FetchOne(ctx context.Context, id int64, force bool) (T, error) {
	key := s.cfg.ItemKey(id)
	if !force {
		var cached T
		if s.cfg.Cache.Get(key, &cached) {
			s.mu.Lock()
			s.state.Selected = &cached
			s.mu.Unlock()
			return cached, nil
		}
	}

	v, err, _ := s.group.Do("one/"+strconv.FormatInt(id, 10), func() (any, error) {
		return s.fetchOne(ctx, id)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (s *Store[T]) fetchOne(ctx context.Context, id int64) (T, error) {
	opLogger := s.opLogger("fetch-one").With().Int64("id", id).Logger()
	done := s.begin()
	defer done()

	item, err := s.cfg.Source.GetOne(ctx, id)
	if err != nil {
		if aborted(ctx, err) {
			opLogger.Debug().Err(err).Msg("fetch abandoned by caller")
			return item, fmt.Errorf("fetch %s %d: %w", s.cfg.Kind, id, err)
		}
		if s.cfg.ReadPolicy == Strict {
			opLogger.Err(err).Msg("failed to fetch record")
			return item, s.fail(fmt.Sprintf("failed to fetch %s %d", s.cfg.Kind, id), err)
		}

		local, found := s.lookup(id)
		if !found {
			opLogger.Err(err).Msg("remote unavailable and no local record")
			return item, s.fail(fmt.Sprintf("failed to fetch %s %d", s.cfg.Kind, id), fmt.Errorf("%w: %w", ErrNotFound, err))
		}
		opLogger.Warn().Err(err).Msg("remote unavailable, using local record")
		item = local
	}

	s.mu.Lock()
	selected := item
	s.state.Selected = &selected
	s.state.LastError = ""
	if err == nil {
		s.state.LastFetched = s.cfg.Now()
	}
	s.mu.Unlock()

	s.cfg.Cache.Set(s.cfg.ItemKey(id), item)
	return item, nil
}

// lookup finds id in the local items, then in the synthetic set.
func (s *Store[T]) lookup(id int64) (T, bool) {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		item := s.state.Items[i]
		s.mu.Unlock()
		return item, true
	}
	s.mu.Unlock()

	for _, item := range s.cfg.Generate(s.cfg.Now()) {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Create sends draft to the remote and prepends the confirmed record. Under
// the fallback policy a failed create prepends a local record with the next
// free id instead.
func (s *Store[T]) Create(ctx context.Context, draft T) (T, error) {
	opLogger := s.opLogger("create")
	done := s.begin()
	defer done()

	created, err := s.cfg.Source.Create(ctx, draft)
	if err == nil {
		s.mu.Lock()
		s.state.Items = slices.Insert(s.state.Items, 0, created)
		s.mu.Unlock()

		s.invalidate(created.GetID())
		opLogger.Debug().Int64("id", created.GetID()).Msg("record created")
		return created, nil
	}

	message := fmt.Sprintf("failed to create %s", s.cfg.Kind)
	if s.cfg.WritePolicy == Strict || aborted(ctx, err) {
		opLogger.Err(err).Msg(message)
		return created, s.fail(message, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	local, serr := record.Stamp(draft, record.NextID(s.state.Items), s.cfg.Now())
	if serr != nil {
		s.state.LastError = advisory(message, serr)
		return local, fmt.Errorf("%s: %w", message, serr)
	}
	s.state.Items = slices.Insert(s.state.Items, 0, local)
	s.state.LastError = advisory(message, err)

	opLogger.Warn().Err(err).Int64("id", local.GetID()).Msg("remote unavailable, record created locally")
	return local, nil
}

// Update sends patch to the remote and replaces the matching record with the
// confirmed one. Under the fallback policy a failed update merges patch into
// the local record.
func (s *Store[T]) Update(ctx context.Context, id int64, patch record.Patch) (T, error) {
	opLogger := s.opLogger("update").With().Int64("id", id).Logger()
	done := s.begin()
	defer done()

	updated, err := s.cfg.Source.Update(ctx, id, patch)
	if err == nil {
		s.mu.Lock()
		s.replace(id, updated)
		s.mu.Unlock()

		s.invalidate(id)
		opLogger.Debug().Msg("record updated")
		return updated, nil
	}

	message := fmt.Sprintf("failed to update %s %d", s.cfg.Kind, id)
	if s.cfg.WritePolicy == Strict || aborted(ctx, err) {
		opLogger.Err(err).Msg(message)
		return updated, s.fail(message, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		nerr := fmt.Errorf("%w: %w", ErrNotFound, err)
		s.state.LastError = advisory(message, nerr)
		return updated, fmt.Errorf("%s: %w", message, nerr)
	}
	local, merr := record.Touch(s.state.Items[i], patch, s.cfg.Now())
	if merr != nil {
		s.state.LastError = advisory(message, merr)
		return local, fmt.Errorf("%s: %w", message, merr)
	}
	s.replace(id, local)
	s.state.LastError = advisory(message, err)

	opLogger.Warn().Err(err).Msg("remote unavailable, record updated locally")
	return local, nil
}

// Delete removes the record remotely, then locally. Under the fallback policy
// a failed delete still removes the local record.
func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	opLogger := s.opLogger("delete").With().Int64("id", id).Logger()
	done := s.begin()
	defer done()

	err := s.cfg.Source.Delete(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.remove(id)
		s.mu.Unlock()

		s.invalidate(id)
		opLogger.Debug().Msg("record deleted")
		return nil
	}

	message := fmt.Sprintf("failed to delete %s %d", s.cfg.Kind, id)
	if s.cfg.WritePolicy == Strict || aborted(ctx, err) {
		opLogger.Err(err).Msg(message)
		return s.fail(message, err)
	}

	s.mu.Lock()
	s.remove(id)
	s.state.LastError = advisory(message, err)
	s.mu.Unlock()

	opLogger.Warn().Err(err).Msg("remote unavailable, record deleted locally")
	return nil
}

// begin marks an operation in flight; the returned func ends it.
func (s *Store[T]) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.state.IsLoading = true
	s.state.LastError = ""
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.inflight--
		s.state.IsLoading = s.inflight > 0
		s.mu.Unlock()
	}
}

func (s *Store[T]) fail(message string, err error) error {
	s.mu.Lock()
	s.state.LastError = advisory(message, err)
	s.mu.Unlock()
	return fmt.Errorf("%s: %w", message, err)
}

// aborted reports whether a remote call failed because the caller gave up.
// Such failures never fall back to local or synthetic data.
func aborted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func advisory(message string, err error) string {
	return fmt.Sprintf("%s: %v", message, err)
}

// invalidate drops the cache entries a write could have staled.
func (s *Store[T]) invalidate(id int64) {
	s.cfg.Cache.Remove(s.cfg.ListKey)
	s.cfg.Cache.Remove(s.cfg.ItemKey(id))
}

// must be called with s.mu held
func (s *Store[T]) indexOf(id int64) int {
	return slices.IndexFunc(s.state.Items, func(it T) bool {
		return it.GetID() == id
	})
}

// must be called with s.mu held
func (s *Store[T]) replace(id int64, item T) {
	if i := s.indexOf(id); i >= 0 {
		s.state.Items[i] = item
	}
	if s.state.Selected != nil && (*s.state.Selected).GetID() == id {
		selected := item
		s.state.Selected = &selected
	}
}

// must be called with s.mu held
func (s *Store[T]) remove(id int64) {
	s.state.Items = slices.DeleteFunc(s.state.Items, func(it T) bool {
		return it.GetID() == id
	})
	if s.state.Selected != nil && (*s.state.Selected).GetID() == id {
		s.state.Selected = nil
	}
}

func (s *Store[T]) opLogger(op string) zerolog.Logger {
	return log.With().
		Str("kind", s.cfg.Kind).
		Str("op", op).
		Str("op-id", uuid.NewString()).
		Logger()
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
