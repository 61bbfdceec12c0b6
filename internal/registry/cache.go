package registry

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached is a Client decorator remembering successful lookups.
type Cached struct {
	inner Client
	cache *lru.Cache[string, string]
}

// NewCached wraps inner with an LRU cache of the given size. A size below 1
// returns inner unchanged.
func NewCached(inner Client, size int) (Client, error) {
	if size < 1 {
		return inner, nil
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: c}, nil
}

// Latest implements Client. Failures are not cached.
func (c *Cached) Latest(ctx context.Context, name string) (string, error) {
	if v, ok := c.cache.Get(name); ok {
		return v, nil
	}
	v, err := c.inner.Latest(ctx, name)
	if err != nil {
		return "", err
	}
	c.cache.Add(name, v)
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int { return c.cache.Len() }
