package collection

import (
	"net/url"

	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
)

// FetchOptions configures a single fetch. It is passed by value and never
// modified, Params included.
type FetchOptions struct {
	// Reset discards the held records instead of appending to them and,
	// unless a page is given, requests the first page.
	Reset bool
	// Page requests an explicit page. 0 means "next page".
	Page int
	// Params are extra query parameters. A "page" entry counts as an
	// explicit page.
	Params url.Values
}

func (o FetchOptions) params() url.Values {
	v := make(url.Values, len(o.Params)+3)
	for k, vs := range o.Params {
		v[k] = append([]string(nil), vs...)
	}
	return v
}

func (o FetchOptions) hasExplicitPage() bool {
	return o.Page > 0 || o.Params.Get(pagination.ParamPage) != ""
}

type PagedOption[T any] func(*Paged[T])

// WithPageLength sends results_per_page with every fetch
func WithPageLength[T any](n int) PagedOption[T] {
	return func(c *Paged[T]) {
		if n > 0 {
			c.pageLength = n
			c.state.PageLength = n
		}
	}
}

// WithObserver registers an observer at construction time
func WithObserver[T any](o Observer) PagedOption[T] {
	return func(c *Paged[T]) {
		c.observers = append(c.observers, o)
	}
}

// WithDecodeHook post-processes every decoded object. An error fails the fetch.
func WithDecodeHook[T any](fn func(T) (T, error)) PagedOption[T] {
	return func(c *Paged[T]) {
		c.decodeHook = fn
	}
}

type mutateOptions struct {
	update  bool
	noFetch bool
}

// MutateOption configures a criteria change
type MutateOption func(*mutateOptions)

// WithUpdate replaces matching criteria instead of stacking a new one.
// For filters a match is the same name, for sorts any sort criterion.
func WithUpdate() MutateOption {
	return func(o *mutateOptions) {
		o.update = true
	}
}

// WithNoFetch skips the reset fetch that normally follows a change.
// Useful when applying several changes in a row.
func WithNoFetch() MutateOption {
	return func(o *mutateOptions) {
		o.noFetch = true
	}
}

func applyMutate(opts []MutateOption) mutateOptions {
	var o mutateOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
