package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
)

// Factory builds a fresh value for a registered name
type Factory[T any] func() (T, error)

// Registry resolves values by name from explicitly registered factories.
// It is the opt-in replacement for looking constructors up in a global namespace.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func New[T any]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a factory. Registering a name twice is an error.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	if name == "" {
		return apperr.NewConfig("factory name must not be empty")
	}
	if f == nil {
		return apperr.NewConfig(fmt.Sprintf("factory %q is nil", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return apperr.NewConfig(fmt.Sprintf("factory %q already registered", name))
	}
	r.factories[name] = f
	return nil
}

// MustRegister is like Register but panics on error.
// Use only during program setup.
func (r *Registry[T]) MustRegister(name string, f Factory[T]) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Resolve builds the value registered under name
func (r *Registry[T]) Resolve(name string) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, apperr.NewConfigWrap("could not find constructor: "+name, apperr.ErrUnknownFactory)
	}

	v, err := f()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("construct %q: %w", name, err)
	}
	return v, nil
}

// Names lists registered names in sorted order
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
