package collection

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestPaged_FetchParams(t *testing.T) {
	ctx := context.Background()

	t.Run("first fetch omits page", func(t *testing.T) {
		f := newFakeFetcher(`{"objects":[1,2],"num_results":6,"page":1,"total_pages":3}`)
		c := NewPaged(f, "api/items", WithPageLength[int](2))

		_, err := c.Fetch(ctx, FetchOptions{})
		require.NoError(t, err)

		q := f.last()
		assert.Equal(t, "2", q.Get("results_per_page"))
		assert.False(t, q.Has("page"))
	})

	t.Run("next fetch asks for current page plus one", func(t *testing.T) {
		f := newFakeFetcher(
			`{"objects":[1,2],"num_results":6,"page":1,"total_pages":3}`,
			`{"objects":[3,4],"num_results":6,"page":2,"total_pages":3}`,
		)
		c := NewPaged[int](f, "api/items")

		_, err := c.Fetch(ctx, FetchOptions{})
		require.NoError(t, err)
		_, err = c.Fetch(ctx, FetchOptions{})
		require.NoError(t, err)

		assert.Equal(t, "2", f.last().Get("page"))
		assert.False(t, f.last().Has("results_per_page"))
		assert.Equal(t, []int{1, 2, 3, 4}, c.Records())
		assert.Equal(t, 2, c.State().Page)
	})

	t.Run("reset omits page and replaces records", func(t *testing.T) {
		f := newFakeFetcher(
			`{"objects":[1,2],"num_results":6,"page":1,"total_pages":3}`,
			`{"objects":[9],"num_results":1,"page":1,"total_pages":1}`,
		)
		c := NewPaged[int](f, "api/items")

		_, err := c.Fetch(ctx, FetchOptions{})
		require.NoError(t, err)
		got, err := c.Fetch(ctx, FetchOptions{Reset: true})
		require.NoError(t, err)

		assert.False(t, f.last().Has("page"))
		assert.Equal(t, []int{9}, got)
		assert.Equal(t, []int{9}, c.Records())
	})

	t.Run("page length and explicit page together", func(t *testing.T) {
		f := newFakeFetcher(`{"objects":[1]}`)
		c := NewPaged(f, "api/items", WithPageLength[int](5))

		_, err := c.Fetch(ctx, FetchOptions{Page: 3, Params: url.Values{"extra": {"x"}}})
		require.NoError(t, err)

		assert.Equal(t, url.Values{"results_per_page": {"5"}, "page": {"3"}, "extra": {"x"}}, f.last())
	})

	t.Run("explicit page wins", func(t *testing.T) {
		f := newFakeFetcher(`{"objects":[1]}`, `{"objects":[2]}`)
		c := NewPaged[int](f, "api/items")

		_, err := c.Fetch(ctx, FetchOptions{Page: 4, Reset: true})
		require.NoError(t, err)
		assert.Equal(t, "4", f.last().Get("page"))

		_, err = c.Fetch(ctx, FetchOptions{Params: url.Values{"page": {"7"}}})
		require.NoError(t, err)
		assert.Equal(t, "7", f.last().Get("page"))
	})

	t.Run("caller params are not mutated", func(t *testing.T) {
		f := newFakeFetcher()
		c := NewPaged(f, "api/items", WithPageLength[int](5))
		params := url.Values{"extra": {"x"}}

		_, err := c.Fetch(ctx, FetchOptions{Params: params})
		require.NoError(t, err)

		assert.Equal(t, url.Values{"extra": {"x"}}, params)
		assert.Equal(t, "x", f.last().Get("extra"))
	})
}

func TestPaged_FetchStartedBeforeRequest(t *testing.T) {
	log := &eventLog{}
	var seenAtRequest []string

	f := newFakeFetcher(`{"objects":[1],"num_results":1}`)
	c := NewPaged(f, "api/items", WithObserver[int](log.observe))
	c.fetcher = fetcherSpy{inner: f, before: func() { seenAtRequest = log.all() }}

	_, err := c.Fetch(context.Background(), FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"page:fetch"}, seenAtRequest)
	assert.Equal(t, []string{"page:fetch", "page:complete"}, log.all())
}

func TestPaged_HasMoreIsLiteralComparison(t *testing.T) {
	f := newFakeFetcher(`{"objects":[1,2,3],"num_results":10}`)
	c := NewPaged[int](f, "api/items")

	_, err := c.Fetch(context.Background(), FetchOptions{})
	require.NoError(t, err)

	// 10 < 3 is false even though seven records remain on the server
	assert.False(t, c.HasMore())
	assert.True(t, c.Remaining())
	assert.Equal(t, 10, c.State().NumResults)
}

func TestPaged_HasMoreWhenHoldingMoreThanReported(t *testing.T) {
	log := &eventLog{}
	c := NewPaged(newFakeFetcher(), "api/items", WithObserver[int](log.observe))

	c.Parse(&pagination.Envelope[int]{Objects: []int{1, 2, 3}, NumResults: intPtr(2), Page: intPtr(4)}, false)

	assert.True(t, c.HasMore())
	assert.False(t, c.Remaining())
	assert.Equal(t, []string{"page:showing 4", "page:complete"}, log.all())
}

func TestPaged_ResetCountsPreviouslyHeldForShowingPage(t *testing.T) {
	log := &eventLog{}
	c := NewPaged(newFakeFetcher(), "api/items", WithObserver[int](log.observe))
	c.Parse(&pagination.Envelope[int]{Objects: []int{1, 2, 3, 4}, NumResults: intPtr(4)}, false)
	require.Equal(t, []string{"page:complete"}, log.all())

	got := c.Parse(&pagination.Envelope[int]{Objects: []int{5, 6}, NumResults: intPtr(3), Page: intPtr(2)}, true)

	assert.Equal(t, []int{5, 6}, got)
	assert.Equal(t, []int{5, 6}, c.Records())
	assert.Equal(t, []string{"page:complete", "page:showing 2", "page:complete"}, log.all())
	assert.False(t, c.HasMore(), "held count after the reset is 2")
}

func TestPaged_ParseMissingObjects(t *testing.T) {
	log := &eventLog{}
	c := NewPaged(newFakeFetcher(), "api/items", WithObserver[int](log.observe))
	c.Parse(&pagination.Envelope[int]{Objects: []int{1}, NumResults: intPtr(5), Page: intPtr(2), TotalPages: intPtr(5)}, false)

	got := c.Parse(&pagination.Envelope[int]{NumResults: intPtr(5)}, false)

	assert.Empty(t, got)
	assert.Equal(t, pagination.State{}, c.State())
	assert.Equal(t, "page:complete", log.all()[len(log.all())-1])
}

func TestPaged_FetchMissingObjects(t *testing.T) {
	f := newFakeFetcher(`{"num_results":3,"page":2,"total_pages":2}`)
	c := NewPaged[int](f, "api/items")

	got, err := c.Fetch(context.Background(), FetchOptions{})
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Zero(t, c.State().NumResults)
	assert.Zero(t, c.State().Page)
	assert.Zero(t, c.State().TotalPages)
	assert.Zero(t, c.Len())
}

func TestPaged_ParseDefaults(t *testing.T) {
	c := NewPaged(newFakeFetcher(), "api/items", WithPageLength[int](25))

	c.Parse(&pagination.Envelope[int]{Objects: []int{1, 2}}, false)

	assert.Equal(t, pagination.State{Page: 1, PageLength: 25, NumResults: 2, TotalPages: 0}, c.State())
}

func TestPaged_FetchError(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("connection refused")
	c := NewPaged[int](f, "api/items")

	_, err := c.Fetch(context.Background(), FetchOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, pagination.State{}, c.State())
}

func TestPaged_DecodeError(t *testing.T) {
	c := NewPaged[int](newFakeFetcher(`{"objects":["a"]}`), "api/items")

	_, err := c.Fetch(context.Background(), FetchOptions{})
	assert.ErrorContains(t, err, "decode envelope")
	assert.Zero(t, c.Len())
}

func TestPaged_DecodeHook(t *testing.T) {
	double := func(v int) (int, error) { return v * 2, nil }
	c := NewPaged(newFakeFetcher(`{"objects":[1,2]}`), "api/items", WithDecodeHook(double))

	got, err := c.Fetch(context.Background(), FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, got)

	failing := func(v int) (int, error) { return 0, fmt.Errorf("bad %d", v) }
	c = NewPaged(newFakeFetcher(`{"objects":[1]}`), "api/items", WithDecodeHook(failing))
	_, err = c.Fetch(context.Background(), FetchOptions{})
	assert.ErrorContains(t, err, "object 0: bad 1")
}

func TestPaged_GoTo(t *testing.T) {
	f := newFakeFetcher(
		`{"objects":[1,2],"num_results":10,"page":1,"total_pages":5}`,
		`{"objects":[9,10],"num_results":10,"page":5,"total_pages":5}`,
	)
	c := NewPaged[int](f, "api/items")
	ctx := context.Background()

	_, err := c.Fetch(ctx, FetchOptions{})
	require.NoError(t, err)

	_, err = c.GoTo(ctx, pagination.Target{Kind: pagination.TargetFastForward})
	require.NoError(t, err)
	assert.Equal(t, "5", f.last().Get("page"))
	assert.Equal(t, []int{9, 10}, c.Records())

	_, err = c.GoTo(ctx, pagination.Target{})
	var ce *apperr.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, pagination.ErrUnknownTarget)
	assert.Equal(t, 2, f.count())
}

func TestPaged_Reset(t *testing.T) {
	c := NewPaged(newFakeFetcher(`{"objects":[1],"page":3}`), "api/items", WithPageLength[int](10))
	_, err := c.Fetch(context.Background(), FetchOptions{})
	require.NoError(t, err)

	c.Reset()

	assert.Zero(t, c.Len())
	assert.Equal(t, pagination.State{PageLength: 10}, c.State())
}

func TestPaged_Subscribe(t *testing.T) {
	log := &eventLog{}
	c := NewPaged[int](newFakeFetcher(`{"objects":[1]}`), "api/items")
	c.Subscribe(log.observe)

	_, err := c.Fetch(context.Background(), FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"page:fetch", "page:complete"}, log.all())
}

func TestPaged_ObserverMayReadState(t *testing.T) {
	var pages []int
	c := NewPaged[int](newFakeFetcher(`{"objects":[1],"page":2}`), "api/items")
	c.Subscribe(func(e Event) {
		if _, ok := e.(PageComplete); ok {
			pages = append(pages, c.State().Page)
		}
	})

	_, err := c.Fetch(context.Background(), FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, pages)
}

func TestPaged_OverlappingFetches(t *testing.T) {
	bodies := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		bodies = append(bodies, fmt.Sprintf(`{"objects":[%d],"num_results":8,"page":%d,"total_pages":8}`, i, i))
	}
	c := NewPaged[int](newFakeFetcher(bodies...), "api/items")

	done := make(chan error, len(bodies))
	for range bodies {
		go func() {
			_, err := c.Fetch(context.Background(), FetchOptions{})
			done <- err
		}()
	}
	for range bodies {
		require.NoError(t, <-done)
	}

	assert.Equal(t, 8, c.Len())
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, c.Records())
}
