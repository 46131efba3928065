package viewcache

import (
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func newTestCache() *Cache {
	return New(1<<20, 0, slog.New(slog.DiscardHandler))
}

func set(c *Cache, u *url.URL, body string) {
	c.Set(u, c.Generation(u.Path), []byte(body))
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "/dashboard/invoices", want: "/dashboard/invoices"},
		{raw: "/dashboard/invoices?", want: "/dashboard/invoices"},
		{raw: "/dashboard/invoices?page=2&query=paid", want: "/dashboard/invoices?page=2&query=paid"},
		{raw: "/dashboard/invoices?query=paid&page=2", want: "/dashboard/invoices?page=2&query=paid"},
	}

	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, Key(mustParse(t, test.raw)))
		})
	}
}

func TestCache_Revalidate(t *testing.T) {
	t.Parallel()

	cache := newTestCache()
	first := mustParse(t, "/dashboard/invoices")
	second := mustParse(t, "/dashboard/invoices?page=2")
	other := mustParse(t, "/dashboard")

	set(cache, first, "page 1")
	set(cache, second, "page 2")
	set(cache, other, "overview")

	body, ok := cache.Get(second)
	require.True(t, ok)
	assert.Equal(t, "page 2", string(body))

	cache.Revalidate("/dashboard/invoices")

	_, ok = cache.Get(first)
	assert.False(t, ok)
	_, ok = cache.Get(second)
	assert.False(t, ok)
	body, ok = cache.Get(other)
	require.True(t, ok)
	assert.Equal(t, "overview", string(body))

	// nothing cached is fine
	cache.Revalidate("/dashboard/invoices")

	set(cache, first, "fresh")
	body, ok = cache.Get(first)
	require.True(t, ok)
	assert.Equal(t, "fresh", string(body))
}

func TestCache_SetAfterRevalidate(t *testing.T) {
	t.Parallel()

	cache := newTestCache()
	u := mustParse(t, "/dashboard/invoices")

	// a rendering that started before a mutation finishes after it
	generation := cache.Generation(u.Path)
	cache.Revalidate(u.Path)
	cache.Set(u, generation, []byte("stale"))

	_, ok := cache.Get(u)
	assert.False(t, ok)

	cache.Set(u, cache.Generation(u.Path), []byte("fresh"))
	body, ok := cache.Get(u)
	require.True(t, ok)
	assert.Equal(t, "fresh", string(body))
}

func TestCache_DistinctQueriesStayBounded(t *testing.T) {
	t.Parallel()

	cache := New(1<<10, 0, slog.New(slog.DiscardHandler))
	for i := range 10_000 {
		set(cache, &url.URL{Path: "/dashboard/invoices", RawQuery: "query=" + strconv.Itoa(i)}, "0123456789abcdef")
	}

	cache.mu.Lock()
	tracked := len(cache.generations)
	cache.mu.Unlock()
	assert.Zero(t, tracked)

	cache.Revalidate("/dashboard/invoices")
	cache.mu.Lock()
	tracked = len(cache.generations)
	cache.mu.Unlock()
	assert.Equal(t, 1, tracked)

	_, ok := cache.Get(&url.URL{Path: "/dashboard/invoices", RawQuery: "query=9999"})
	assert.False(t, ok)
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	cache := newTestCache()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Go(func() {
			u := &url.URL{Path: "/dashboard/invoices", RawQuery: "page=" + strconv.Itoa(i)}
			set(cache, u, "body")
			cache.Get(u)
			cache.Revalidate("/dashboard/invoices")
		})
	}
	wg.Wait()

	cache.Revalidate("/dashboard/invoices")
	_, ok := cache.Get(mustParse(t, "/dashboard/invoices?page=0"))
	assert.False(t, ok)
	assert.Equal(t, uint64(17), cache.Generation("/dashboard/invoices"))
}
