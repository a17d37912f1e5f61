package github

import (
	"fmt"
	"net/http"

	"github.com/gregjones/httpcache"
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntries bounds the number of responses kept for revalidation.
const cacheEntries = 512

var _ httpcache.Cache = (*lruCache)(nil)

// lruCache is an httpcache.Cache that evicts the least recently used
// response once cacheEntries is reached.
type lruCache struct {
	entries *lru.Cache[string, []byte]
}

func newLRUCache(size int) (*lruCache, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &lruCache{entries: c}, nil
}

func (c *lruCache) Get(key string) ([]byte, bool) {
	return c.entries.Get(key)
}

func (c *lruCache) Set(key string, resp []byte) {
	c.entries.Add(key, resp)
}

func (c *lruCache) Delete(key string) {
	c.entries.Remove(key)
}

// revalidateTransport marks every upstream response as "no-cache" so a stored
// response is never served without a conditional request. Validators (ETag,
// Last-Modified) are kept, so an unchanged resource costs a 304.
type revalidateTransport struct {
	base http.RoundTripper
}

func (t *revalidateTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Header.Set("Cache-Control", "no-cache")
	resp.Header.Del("Expires")
	return resp, nil
}

// newRevalidatingCache returns a transport that stores responses in a bounded
// LRU and revalidates each of them with upstream before reuse.
func newRevalidatingCache(base http.RoundTripper, size int) (http.RoundTripper, error) {
	store, err := newLRUCache(size)
	if err != nil {
		return nil, fmt.Errorf("creating response cache: %w", err)
	}
	t := httpcache.NewTransport(store)
	t.Transport = &revalidateTransport{base: base}
	return t, nil
}
