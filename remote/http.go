package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portfolio/record"
)

// RequestIDHeader carries the id of each outgoing request.
const RequestIDHeader = "X-Request-Id"

// HTTPSource talks to a REST resource:
//
//	GET    /<resource>        list
//	GET    /<resource>/{id}   get one
//	POST   /<resource>        create
//	PUT    /<resource>/{id}   update
//	DELETE /<resource>/{id}   delete
type HTTPSource[T any] struct {
	BaseURL  string
	Resource string
	Client   *http.Client

	noDelete bool
}

type HTTPOption func(*httpOptions)

type httpOptions struct {
	client   *http.Client
	noDelete bool
}

// WithClient sets the HTTP client, and through it the transport timeout.
func WithClient(c *http.Client) HTTPOption {
	return func(o *httpOptions) {
		o.client = c
	}
}

// WithoutDelete marks a resource whose API has no delete endpoint.
func WithoutDelete() HTTPOption {
	return func(o *httpOptions) {
		o.noDelete = true
	}
}

func NewHTTPSource[T any](baseURL string, resource string, opts ...HTTPOption) *HTTPSource[T] {
	o := httpOptions{client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}
	return &HTTPSource[T]{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Resource: strings.Trim(resource, "/"),
		Client:   o.client,
		noDelete: o.noDelete,
	}
}

func (s *HTTPSource[T]) ListAll(ctx context.Context) ([]T, error) {
	var items []T
	err := s.do(ctx, http.MethodGet, s.url(), nil, http.StatusOK, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *HTTPSource[T]) GetOne(ctx context.Context, id int64) (T, error) {
	var item T
	err := s.do(ctx, http.MethodGet, s.itemURL(id), nil, http.StatusOK, &item)
	return item, err
}

func (s *HTTPSource[T]) Create(ctx context.Context, draft T) (T, error) {
	var item T
	err := s.do(ctx, http.MethodPost, s.url(), draft, http.StatusCreated, &item)
	return item, err
}

func (s *HTTPSource[T]) Update(ctx context.Context, id int64, patch record.Patch) (T, error) {
	var item T
	err := s.do(ctx, http.MethodPut, s.itemURL(id), patch, http.StatusOK, &item)
	return item, err
}

func (s *HTTPSource[T]) Delete(ctx context.Context, id int64) error {
	if s.noDelete {
		return fmt.Errorf("delete %s: %w", s.Resource, ErrUnsupported)
	}
	return s.do(ctx, http.MethodDelete, s.itemURL(id), nil, http.StatusNoContent, nil)
}

func (s *HTTPSource[T]) url() string {
	return fmt.Sprintf("%s/%s", s.BaseURL, s.Resource)
}

func (s *HTTPSource[T]) itemURL(id int64) string {
	return fmt.Sprintf("%s/%s/%d", s.BaseURL, s.Resource, id)
}

func (s *HTTPSource[T]) do(ctx context.Context, method, url string, body any, expected int, out any) error {
	return do(ctx, s.Client, s.Resource, method, url, body, expected, out)
}

// Action is a server endpoint that starts work on a POST without a body.
type Action struct {
	URL    string
	Client *http.Client
}

func NewAction(baseURL string, path string, opts ...HTTPOption) *Action {
	o := httpOptions{client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Action{
		URL:    fmt.Sprintf("%s/%s", strings.TrimSuffix(baseURL, "/"), strings.Trim(path, "/")),
		Client: o.client,
	}
}

// Trigger posts to the endpoint and expects 202 Accepted.
func (a *Action) Trigger(ctx context.Context) error {
	return do(ctx, a.Client, a.URL, http.MethodPost, a.URL, nil, http.StatusAccepted, nil)
}

func do(ctx context.Context, client *http.Client, resource, method, url string, body any, expected int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", method, err)
	}
	requestID := uuid.NewString()
	request.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	requestLogger := log.With().
		Str("request-id", requestID).
		Str("method", method).
		Str("url", url).
		Logger()
	requestLogger.Debug().Msg("sending request")

	response, err := client.Do(request)
	if err != nil {
		requestLogger.Debug().Err(err).Msg("request sending failed")
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer response.Body.Close()

	decoder := json.NewDecoder(response.Body)
	if response.StatusCode != expected {
		e := ErrResponse{}
		if err := decoder.Decode(&e); err != nil {
			requestLogger.Debug().Err(err).Msg("failed to decode error message")
		}
		requestLogger.Debug().
			Int("status-code", response.StatusCode).
			Str("message", e.Message).
			Msg("received an unexpected response code")
		return &StatusError{StatusCode: response.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("error decoding %s response: %w", resource, err)
	}
	return nil
}
