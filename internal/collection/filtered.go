package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/internal/transport"
	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
)

// Filtered is a Paged collection with an ordered list of filter and sort
// criteria. Every fetch sends the whole list as q={"filters": [...]}.
//
// Criteria changes trigger a reset fetch unless WithNoFetch is given.
type Filtered[T any] struct {
	*Paged[T]

	// guarded by Paged.mu
	criteria []*Criterion
}

type query struct {
	Filters []Criterion `json:"filters"`
}

func NewFiltered[T any](fetcher transport.Fetcher, path string, opts ...PagedOption[T]) *Filtered[T] {
	f := &Filtered[T]{
		Paged: NewPaged(fetcher, path, opts...),
	}
	f.Paged.decorate = f.encodeCriteria
	return f
}

// FilterBy appends a filter given in any form NewFilter accepts and returns
// the stored criterion, which RemoveFilter accepts for exact removal.
func (f *Filtered[T]) FilterBy(ctx context.Context, shorthand any, opts ...MutateOption) (*Criterion, error) {
	c, err := NewFilter(shorthand)
	if err != nil {
		return nil, err
	}
	o := applyMutate(opts)

	stored := &c
	f.mutate(func(list []*Criterion) []*Criterion {
		if o.update {
			list = reject(list, func(existing *Criterion) bool {
				return existing.Name == c.Name
			})
		}
		return append(list, stored)
	})

	return stored, f.refetch(ctx, o)
}

// FilterByArgs is FilterBy with positional arguments
func (f *Filtered[T]) FilterByArgs(ctx context.Context, name, op string, val any, opts ...MutateOption) (*Criterion, error) {
	return f.FilterBy(ctx, []any{name, op, val}, opts...)
}

// SortBy appends a sort given in any form NewSort accepts.
// With WithUpdate every existing sort is dropped first, whatever its field.
func (f *Filtered[T]) SortBy(ctx context.Context, shorthand any, opts ...MutateOption) (*Criterion, error) {
	c, err := NewSort(shorthand)
	if err != nil {
		return nil, err
	}
	o := applyMutate(opts)

	stored := &c
	f.mutate(func(list []*Criterion) []*Criterion {
		if o.update {
			list = reject(list, isSort)
		}
		return append(list, stored)
	})

	return stored, f.refetch(ctx, o)
}

// SortByArgs is SortBy with positional arguments
func (f *Filtered[T]) SortByArgs(ctx context.Context, name, dir string, opts ...MutateOption) (*Criterion, error) {
	return f.SortBy(ctx, []any{name, dir}, opts...)
}

// RemoveFilter drops criteria by field name (string) or by identity
// (*Criterion as returned from FilterBy or SortBy).
func (f *Filtered[T]) RemoveFilter(ctx context.Context, target any, opts ...MutateOption) error {
	var match func(*Criterion) bool
	switch t := target.(type) {
	case string:
		match = func(c *Criterion) bool { return c.Name == t }
	case *Criterion:
		match = func(c *Criterion) bool { return c == t }
	default:
		return apperr.NewValidation(fmt.Sprintf("remove filter needs a name or *Criterion, got %T", target))
	}

	f.mutate(func(list []*Criterion) []*Criterion {
		return reject(list, match)
	})
	return f.refetch(ctx, applyMutate(opts))
}

// RemoveSort drops every sort criterion
func (f *Filtered[T]) RemoveSort(ctx context.Context, opts ...MutateOption) error {
	f.mutate(func(list []*Criterion) []*Criterion {
		return reject(list, isSort)
	})
	return f.refetch(ctx, applyMutate(opts))
}

// Criteria returns a copy of the current criteria in send order
func (f *Filtered[T]) Criteria() []Criterion {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Criterion, len(f.criteria))
	for i, c := range f.criteria {
		out[i] = *c
	}
	return out
}

// Reset drops records, page state and criteria
func (f *Filtered[T]) Reset() {
	f.Paged.Reset()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.criteria = nil
}

func (f *Filtered[T]) mutate(fn func([]*Criterion) []*Criterion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.criteria = fn(f.criteria)
}

func (f *Filtered[T]) refetch(ctx context.Context, o mutateOptions) error {
	if o.noFetch {
		return nil
	}
	_, err := f.Fetch(ctx, FetchOptions{Reset: true})
	return err
}

// encodeCriteria runs with Paged.mu held
func (f *Filtered[T]) encodeCriteria(params url.Values) error {
	q := query{Filters: make([]Criterion, 0, len(f.criteria))}
	for _, c := range f.criteria {
		q.Filters = append(q.Filters, *c)
	}

	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	params.Set(pagination.ParamQuery, string(b))
	slog.Debug("Encoded criteria", "path", f.path, "criteria", len(q.Filters))
	return nil
}

func isSort(c *Criterion) bool {
	return c.IsSort()
}

func reject(list []*Criterion, match func(*Criterion) bool) []*Criterion {
	out := make([]*Criterion, 0, len(list))
	for _, c := range list {
		if !match(c) {
			out = append(out, c)
		}
	}
	return out
}
