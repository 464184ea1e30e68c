package collection_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/internal/collection"
	"github.com/DjordjeVuckovic/restless-collections/internal/record"
	"github.com/DjordjeVuckovic/restless-collections/internal/stub"
	"github.com/DjordjeVuckovic/restless-collections/internal/transport"
	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startStub(t *testing.T) *transport.HTTPFetcher {
	t.Helper()

	ds, err := stub.LoadDataset("../stub/testdata/books.yaml")
	require.NoError(t, err)
	store, err := stub.NewStoreFromDataset(ds)
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	stub.NewListRouter(e, store).Bind()

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return transport.NewHTTPFetcher(srv.URL + "/api")
}

func titlesOf(records []record.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r["title"].(string))
	}
	return out
}

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) observe(e collection.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.String())
}

func (r *eventRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func TestPaged_AgainstStub(t *testing.T) {
	ctx := context.Background()
	events := &eventRecorder{}
	books := collection.NewPaged[record.Record](startStub(t), "books",
		collection.WithPageLength[record.Record](2),
		collection.WithObserver[record.Record](events.observe),
	)

	page, err := books.Fetch(ctx, collection.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Neuromancer"}, titlesOf(page))
	assert.Equal(t, pagination.State{Page: 1, PageLength: 2, NumResults: 5, TotalPages: 3}, books.State())
	assert.Equal(t, []string{"page:fetch", "page:complete"}, events.take())

	for books.Remaining() {
		_, err := books.Fetch(ctx, collection.FetchOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, 5, books.Len())
	assert.Equal(t, 3, books.State().Page)
	assert.False(t, books.HasMore())

	page, err = books.GoTo(ctx, pagination.PageTarget(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"The Left Hand of Darkness", "Hyperion"}, titlesOf(page))
	assert.Equal(t, page, books.Records())

	footer := pagination.Footer(books.State(), pagination.ShowWhenPaged)
	assert.True(t, footer.Visible)
	assert.Equal(t, []string{"[<<]", "<", "1", "*2*", "3", ">", ">>"}, footer.Labels())

	page, err = books.GoTo(ctx, pagination.Target{Kind: pagination.TargetFastForward})
	require.NoError(t, err)
	assert.Equal(t, []string{"Snow Crash"}, titlesOf(page))
}

func TestFiltered_AgainstStub(t *testing.T) {
	ctx := context.Background()
	books := collection.NewFiltered[record.Record](startStub(t), "books",
		collection.WithPageLength[record.Record](2),
	)

	genre, err := books.FilterByArgs(ctx, "genre", "==", "scifi")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "The Left Hand of Darkness"}, titlesOf(books.Records()))
	assert.Equal(t, 3, books.State().NumResults)
	assert.Equal(t, 2, books.State().TotalPages)

	_, err = books.SortBy(ctx, []any{"year", "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hyperion", "The Left Hand of Darkness"}, titlesOf(books.Records()))

	_, err = books.Fetch(ctx, collection.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hyperion", "The Left Hand of Darkness", "Dune"}, titlesOf(books.Records()))
	assert.False(t, books.Remaining())

	_, err = books.SortBy(ctx, "title", collection.WithUpdate(), collection.WithNoFetch())
	require.NoError(t, err)
	assert.Len(t, books.Records(), 3, "no fetch keeps the held records")

	require.NoError(t, books.RemoveFilter(ctx, genre))
	assert.Equal(t, []string{"Dune", "Hyperion"}, titlesOf(books.Records()))
	assert.Equal(t, 5, books.State().NumResults)
	assert.Equal(t, 3, books.State().TotalPages)

	_, err = books.FilterBy(ctx, map[string]any{"name": "publisher", "op": "is_null"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hyperion"}, titlesOf(books.Records()))

	_, err = books.FilterBy(ctx, []any{"genre", "cyberpunk"}, collection.WithUpdate())
	require.NoError(t, err)
	assert.Empty(t, books.Records())
	assert.Equal(t, 0, books.State().NumResults)
}

func TestFiltered_StubRejectsQuery(t *testing.T) {
	books := collection.NewFiltered[record.Record](startStub(t), "books")

	_, err := books.FilterByArgs(context.Background(), "tags", "in", "classic")
	require.Error(t, err)

	var se *transport.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Code)
	assert.Contains(t, se.Body, "needs a list value")
}

func TestPaged_DecodeHookAgainstStub(t *testing.T) {
	schema, err := record.ParseSchema([]byte(`
name: books
fields:
  title:
    type: Text
  year:
    type: Number
`))
	require.NoError(t, err)

	var calls int
	books := collection.NewPaged[record.Record](startStub(t), "books",
		collection.WithDecodeHook(func(r record.Record) (record.Record, error) {
			calls++
			return schema.Coerce(r)
		}),
	)

	_, err = books.Fetch(context.Background(), collection.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, float64(1965), books.Records()[0]["year"])
}
