package tasks

import (
	"time"

	"github.com/patrickmn/go-cache"
)

type cachedFeed struct {
	ETag         string
	LastModified string
	Body         []byte
}

// FetchCache remembers the validators and body of the last successful
// response per URL, so later runs can send conditional requests.
type FetchCache struct {
	cache *cache.Cache
}

func NewFetchCache(expiration time.Duration) *FetchCache {
	return &FetchCache{cache: cache.New(expiration, 2*expiration)}
}

func (c *FetchCache) get(url string) (cachedFeed, bool) {
	if c == nil {
		return cachedFeed{}, false
	}
	value, found := c.cache.Get(url)
	if !found {
		return cachedFeed{}, false
	}
	entry, ok := value.(cachedFeed)
	return entry, ok
}

func (c *FetchCache) set(url string, entry cachedFeed) {
	if c == nil || (entry.ETag == "" && entry.LastModified == "") {
		return
	}
	c.cache.Set(url, entry, cache.DefaultExpiration)
}

func (c *FetchCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}
