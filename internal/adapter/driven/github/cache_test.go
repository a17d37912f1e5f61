package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cachingUserServer answers /users/octocat with a 60 second max-age and an
// ETag. When changing is set every hit returns a new follower count and ETag;
// otherwise a matching If-None-Match gets a 304.
func cachingUserServer(t *testing.T, changing bool, hits, conditional *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		version := int32(1)
		if changing {
			version = n
		}
		etag := fmt.Sprintf(`"v%d"`, version)

		w.Header().Set("Cache-Control", "private, max-age=60")
		w.Header().Set("ETag", etag)
		if inm := r.Header.Get("If-None-Match"); inm != "" {
			conditional.Add(1)
			if inm == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"login":"octocat","followers":%d}`, version)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPCache_EveryFetchReachesUpstream(t *testing.T) {
	var hits, conditional atomic.Int32
	srv := cachingUserServer(t, true, &hits, &conditional)

	client, err := NewClient("", ClientOptions{APIBaseURL: srv.URL, HTTPCache: true})
	require.NoError(t, err)

	first, err := client.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)
	second, err := client.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(1), conditional.Load(), "second fetch should revalidate")
	assert.Equal(t, 1, first.Followers)
	assert.Equal(t, 2, second.Followers)
}

func TestHTTPCache_NotModifiedServesStoredBody(t *testing.T) {
	var hits, conditional atomic.Int32
	srv := cachingUserServer(t, false, &hits, &conditional)

	client, err := NewClient("", ClientOptions{APIBaseURL: srv.URL, HTTPCache: true})
	require.NoError(t, err)

	first, err := client.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)
	second, err := client.FetchUser(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(1), conditional.Load())
	assert.Equal(t, first.Followers, second.Followers)
	assert.Equal(t, "octocat", second.Login)
}

func TestHTTPCache_Disabled(t *testing.T) {
	var hits, conditional atomic.Int32
	srv := cachingUserServer(t, false, &hits, &conditional)

	client, err := NewClient("", ClientOptions{APIBaseURL: srv.URL})
	require.NoError(t, err)

	for range 2 {
		_, err := client.FetchUser(context.Background(), "octocat")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), hits.Load())
	assert.Zero(t, conditional.Load())
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	c, err := newLRUCache(2)
	require.NoError(t, err)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	_, _ = c.Get("a")
	c.Set("c", []byte("3"))

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}
