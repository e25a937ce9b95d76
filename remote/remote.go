// Package remote defines the data source the entity stores read from and write
// to, and a REST implementation of it.
package remote

import (
	"context"
	"errors"
	"fmt"

	"portfolio/record"
)

var (
	ErrNotFound    = errors.New("remote: not found")
	ErrUnsupported = errors.New("remote: operation not supported")
)

// Source is the remote side of one entity kind. Every method may fail with a
// transport error.
type Source[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	GetOne(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id int64, patch record.Patch) (T, error)
	Delete(ctx context.Context, id int64) error
}

// ErrResponse is the JSON body of an API error.
type ErrResponse struct {
	HTTPStatusCode int
	Message        string
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("received unexpected http status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("received unexpected http status code: %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// ReadOnly exposes only the read side of a source; writes fail with
// ErrUnsupported without reaching the remote.
type ReadOnly[T any] struct {
	Source[T]
}

func (ReadOnly[T]) Create(context.Context, T) (T, error) {
	var zero T
	return zero, ErrUnsupported
}

func (ReadOnly[T]) Update(context.Context, int64, record.Patch) (T, error) {
	var zero T
	return zero, ErrUnsupported
}

func (ReadOnly[T]) Delete(context.Context, int64) error {
	return ErrUnsupported
}
