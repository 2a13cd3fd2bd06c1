package memcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// defaultTTL keeps entries comfortably inside the one hour lifetime of a
// GitHub installation token.
const defaultTTL = 50 * time.Minute

// Cache is an in-memory expirable LRU token cache. The surrounding
// application may substitute any other TokenCache implementation; this one
// exists so the binary is self contained.
type Cache struct {
	lru *expirable.LRU[string, string]
}

// New creates a Cache holding up to size entries for ttl. Zero values fall
// back to 128 entries and the default TTL.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 128
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Get looks up a cached token by installation id
func (c *Cache) Get(_ context.Context, key string) (string, bool) {
	return c.lru.Get(key)
}

// Set stores a token under an installation id
func (c *Cache) Set(_ context.Context, key, value string) {
	c.lru.Add(key, value)
}
