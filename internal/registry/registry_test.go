package registry_test

import (
	"errors"
	"testing"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ name string }

func TestRegistry_Resolve(t *testing.T) {
	r := registry.New[*widget]()
	r.MustRegister("books", func() (*widget, error) { return &widget{name: "books"}, nil })

	w, err := r.Resolve("books")
	require.NoError(t, err)
	assert.Equal(t, "books", w.name)

	other, err := r.Resolve("books")
	require.NoError(t, err)
	assert.NotSame(t, w, other, "each resolve builds a new value")
}

func TestRegistry_UnknownName(t *testing.T) {
	r := registry.New[*widget]()

	_, err := r.Resolve("Authors")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnknownFactory)

	var ce *apperr.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "could not find constructor: Authors", ce.Message)
}

func TestRegistry_Register(t *testing.T) {
	r := registry.New[int]()
	ok := func() (int, error) { return 1, nil }

	require.NoError(t, r.Register("one", ok))
	assert.Error(t, r.Register("one", ok))
	assert.Error(t, r.Register("", ok))
	assert.Error(t, r.Register("nil", nil))
	assert.Panics(t, func() { r.MustRegister("one", ok) })

	require.NoError(t, r.Register("two", func() (int, error) { return 2, nil }))
	assert.Equal(t, []string{"one", "two"}, r.Names())
}

func TestRegistry_FactoryError(t *testing.T) {
	r := registry.New[int]()
	r.MustRegister("broken", func() (int, error) { return 0, errors.New("no fetcher") })

	_, err := r.Resolve("broken")
	assert.ErrorContains(t, err, `construct "broken": no fetcher`)
	assert.NotErrorIs(t, err, apperr.ErrUnknownFactory)
}
