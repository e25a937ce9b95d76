// Package entity implements the optimistic entity store: a state container per
// entity kind that reads through the TTL cache, writes to the remote source,
// and degrades to synthetic or locally mutated data when the remote fails,
// according to its configured policies.
package entity

import (
	"errors"
	"fmt"
	"time"

	"portfolio/record"
	"portfolio/remote"
	"portfolio/synthetic"
)

var (
	ErrNotFound      = errors.New("entity: record not found")
	ErrInvalidConfig = errors.New("entity: invalid store configuration")
)

// Policy decides what a failed remote call does to the store.
type Policy int

const (
	// Strict leaves state untouched, records LastError and returns the error.
	Strict Policy = iota
	// Fallback keeps the store usable with synthetic or locally mutated data
	// and does not return the error.
	Fallback
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "strict":
		return Strict, nil
	case "fallback":
		return Fallback, nil
	default:
		return Strict, fmt.Errorf("unsupported policy: %s", s)
	}
}

// Cache is the part of the TTL cache used by the store.
type Cache interface {
	Get(key string, out any) bool
	Set(key string, data any)
	Remove(key string)
}

// Config of one store. Source, Cache and Kind are required; Generate is
// required when ReadPolicy is Fallback.
type Config[T record.Record] struct {
	Kind   string
	Source remote.Source[T]
	Cache  Cache

	// Cache key of the full list, defaults to Kind
	ListKey  string
	Generate synthetic.Generator[T]

	ReadPolicy  Policy
	WritePolicy Policy

	// Clock, defaults to time.Now
	Now func() time.Time
}

// ItemKey is the cache key of a single record.
func (c Config[T]) ItemKey(id int64) string {
	return fmt.Sprintf("%s_%d", c.Kind, id)
}

func (c Config[T]) validate() error {
	switch {
	case c.Kind == "":
		return fmt.Errorf("%w: missing kind", ErrInvalidConfig)
	case c.Source == nil:
		return fmt.Errorf("%w: %s: missing source", ErrInvalidConfig, c.Kind)
	case c.Cache == nil:
		return fmt.Errorf("%w: %s: missing cache", ErrInvalidConfig, c.Kind)
	case c.ReadPolicy == Fallback && c.Generate == nil:
		return fmt.Errorf("%w: %s: fallback reads need a generator", ErrInvalidConfig, c.Kind)
	}
	return nil
}

// State of a store. Items are ordered most recent first for created records.
type State[T any] struct {
	Items       []T
	Selected    *T
	IsLoading   bool
	LastError   string
	LastFetched time.Time
}
