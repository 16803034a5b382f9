package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (m *memCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	return nil, assert.AnError
}

func (m *memCache) Set(key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func newAPIServer(t *testing.T, hits *int, results []Result) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++

		var payload searchPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "basic", payload.SearchDepth)
		assert.True(t, payload.IncludeRawContent)

		json.NewEncoder(w).Encode(Response{Results: results})
	}))
}

func TestSearchDecodesResults(t *testing.T) {
	hits := 0
	server := newAPIServer(t, &hits, []Result{
		{URL: "https://www.amazon.in/dp/B0A", Title: "iPhone 15"},
	})
	defer server.Close()

	client := NewTavilyClient(server.URL, "tvly-test", 5*time.Second, nil, time.Minute)
	resp, err := client.Search(context.Background(), "iphone 15", []string{"amazon.in"}, 5)

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://www.amazon.in/dp/B0A", resp.Results[0].URL)
	assert.Equal(t, 1, hits)
}

func TestSearchUsesCache(t *testing.T) {
	hits := 0
	server := newAPIServer(t, &hits, []Result{{URL: "https://www.amazon.in/dp/B0A"}})
	defer server.Close()

	client := NewTavilyClient(server.URL, "tvly-test", 5*time.Second, newMemCache(), time.Minute)

	_, err := client.Search(context.Background(), "iphone 15", []string{"amazon.in"}, 5)
	require.NoError(t, err)
	_, err = client.Search(context.Background(), "iphone 15", []string{"amazon.in"}, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second identical search must be served from cache")

	// A different query misses the cache
	_, err = client.Search(context.Background(), "iphone 15 plus", []string{"amazon.in"}, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestResolvePicksDomainMatch(t *testing.T) {
	hits := 0
	server := newAPIServer(t, &hits, []Result{
		{URL: "https://www.youtube.com/watch?v=review"},
		{URL: "https://www.amazon.in/apple-iphone-15/dp/B0CHX1W1XY"},
	})
	defer server.Close()

	client := NewTavilyClient(server.URL, "tvly-test", 5*time.Second, nil, time.Minute)
	url, err := client.Resolve(context.Background(), "iphone 15", "amazon.in")

	require.NoError(t, err)
	assert.Equal(t, "https://www.amazon.in/apple-iphone-15/dp/B0CHX1W1XY", url)
}

func TestResolveNoMatchReturnsEmpty(t *testing.T) {
	hits := 0
	server := newAPIServer(t, &hits, []Result{{URL: "https://www.youtube.com/watch?v=review"}})
	defer server.Close()

	client := NewTavilyClient(server.URL, "tvly-test", 5*time.Second, nil, time.Minute)
	url, err := client.Resolve(context.Background(), "iphone 15", "amazon.in")

	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestSearchAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewTavilyClient(server.URL, "tvly-test", 5*time.Second, nil, time.Minute)
	_, err := client.Search(context.Background(), "iphone 15", []string{"amazon.in"}, 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
