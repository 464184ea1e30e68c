package collection

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/DjordjeVuckovic/restless-collections/internal/transport"
)

// fakeFetcher replays canned bodies and records the query of every call
type fakeFetcher struct {
	mu     sync.Mutex
	bodies []string
	calls  []url.Values
	err    error
}

func newFakeFetcher(bodies ...string) *fakeFetcher {
	return &fakeFetcher{bodies: bodies}
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, params url.Values) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	body := `{"objects":[]}`
	if len(f.bodies) > 0 {
		body, f.bodies = f.bodies[0], f.bodies[1:]
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeFetcher) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var _ transport.Fetcher = (*fakeFetcher)(nil)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) observe(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e.String())
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fetcherSpy struct {
	inner  transport.Fetcher
	before func()
}

func (s fetcherSpy) Fetch(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	s.before()
	return s.inner.Fetch(ctx, path, params)
}
