package collection

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/internal/transport"
	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
)

// Paged is a collection fetched page by page from a Restless list endpoint.
//
// Repeated fetches walk forward through the pages and append what they get.
// Overlapping fetches are not sequenced: each applies its response when it
// resolves, so the last one to resolve wins the page state.
type Paged[T any] struct {
	fetcher    transport.Fetcher
	path       string
	pageLength int
	decodeHook func(T) (T, error)

	// decorate adds extra query parameters while mu is held
	decorate func(url.Values) error

	mu        sync.Mutex
	records   []T
	state     pagination.State
	observers []Observer
}

func NewPaged[T any](fetcher transport.Fetcher, path string, opts ...PagedOption[T]) *Paged[T] {
	c := &Paged[T]{
		fetcher: fetcher,
		path:    path,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests a page and merges it into the held records.
// It returns the objects of the fetched page.
func (c *Paged[T]) Fetch(ctx context.Context, opts FetchOptions) ([]T, error) {
	params, err := c.buildParams(opts)
	if err != nil {
		return nil, err
	}

	c.emit(FetchStarted{})
	slog.Debug("Fetching collection page", "path", c.path, "page", params.Get(pagination.ParamPage), "reset", opts.Reset)

	body, err := c.fetcher.Fetch(ctx, c.path, params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.path, err)
	}
	defer body.Close()

	env, err := pagination.DecodeEnvelope[T](body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.path, err)
	}
	if c.decodeHook != nil {
		for i, obj := range env.Objects {
			if env.Objects[i], err = c.decodeHook(obj); err != nil {
				return nil, fmt.Errorf("fetch %s: object %d: %w", c.path, i, err)
			}
		}
	}

	return c.apply(env, opts.Reset), nil
}

// Parse updates the page state from env and merges its objects, exactly as
// a fetch would. A nil Objects slice is an empty terminal page.
func (c *Paged[T]) Parse(env *pagination.Envelope[T], reset bool) []T {
	return c.apply(env, reset)
}

// GoTo fetches the page a pager control leads to and replaces the held records
func (c *Paged[T]) GoTo(ctx context.Context, target pagination.Target) ([]T, error) {
	page, err := target.Resolve(c.State())
	if err != nil {
		return nil, apperr.NewConfigWrap("navigate", err)
	}
	if page < 1 {
		page = 1
	}
	return c.Fetch(ctx, FetchOptions{Reset: true, Page: page})
}

// HasMore compares the reported total against the held records.
//
// It reports NumResults < Len(), which is true when the collection holds
// MORE than the server reported. Use Remaining for the "more pages exist"
// check.
func (c *Paged[T]) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMoreLocked()
}

// Remaining reports whether the server has records the collection does not hold yet
func (c *Paged[T]) Remaining() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.NumResults > len(c.records)
}

func (c *Paged[T]) State() pagination.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Paged[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns a copy of the held records
func (c *Paged[T]) Records() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.records...)
}

func (c *Paged[T]) Path() string {
	return c.path
}

func (c *Paged[T]) PageLength() int {
	return c.pageLength
}

// Reset drops the held records and page state
func (c *Paged[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.state = pagination.State{PageLength: c.pageLength}
}

// Subscribe registers an observer for all future events
func (c *Paged[T]) Subscribe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

func (c *Paged[T]) buildParams(opts FetchOptions) (url.Values, error) {
	params := opts.params()

	c.mu.Lock()
	defer c.mu.Unlock()

	req := pagination.Request{PageLength: c.pageLength}
	switch {
	case opts.Page > 0:
		req.Page = opts.Page
	case opts.hasExplicitPage():
	case opts.Reset || c.state.Page == 0:
		params.Del(pagination.ParamPage)
	default:
		req.Page = c.state.Page + 1
	}
	req.Encode(params)

	if c.decorate != nil {
		if err := c.decorate(params); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func (c *Paged[T]) apply(env *pagination.Envelope[T], reset bool) []T {
	var events []Event

	c.mu.Lock()
	if env == nil || env.Objects == nil {
		c.state.NumResults = 0
		c.state.Page = 0
		c.state.TotalPages = 0
		if reset {
			c.records = nil
		}
		events = append(events, PageComplete{})
		c.mu.Unlock()

		c.emit(events...)
		return nil
	}

	objects := env.Objects
	c.state.NumResults = valueOr(env.NumResults, len(objects))
	c.state.Page = valueOr(env.Page, 1)
	c.state.TotalPages = valueOr(env.TotalPages, 0)

	// counted against what was held before the merge, reset or not
	showing := c.state.NumResults < len(c.records)+len(objects)
	if reset {
		c.records = append([]T(nil), objects...)
	} else {
		c.records = append(c.records, objects...)
	}

	if showing {
		events = append(events, ShowingPage{Page: c.state.Page})
	}
	events = append(events, PageComplete{})
	state := c.state
	c.mu.Unlock()

	slog.Debug("Parsed collection page", "path", c.path, "page", state.Page, "num_results", state.NumResults, "objects", len(objects))
	c.emit(events...)
	return objects
}

func (c *Paged[T]) hasMoreLocked() bool {
	return c.state.NumResults < len(c.records)
}

func (c *Paged[T]) emit(events ...Event) {
	c.mu.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, e := range events {
		for _, o := range observers {
			o(e)
		}
	}
}

// valueOr mirrors the "x || default" fallback of the Restless envelope:
// an absent or zero counter takes the default
func valueOr(p *int, def int) int {
	if p == nil || *p == 0 {
		return def
	}
	return *p
}
