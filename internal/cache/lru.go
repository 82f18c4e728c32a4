package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUConfig sizes the in-memory provider.
type LRUConfig struct {
	Size int
	TTL  time.Duration
}

// LRUProvider keeps responses in an expirable LRU. Entries share one TTL,
// fixed at construction.
type LRUProvider struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRUProvider builds an in-memory provider.
func NewLRUProvider(cfg LRUConfig) *LRUProvider {
	size := cfg.Size
	if size <= 0 {
		size = 128
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LRUProvider{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the cached value or ErrCacheMiss.
func (p *LRUProvider) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := p.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return value, nil
}

// Set stores a copy of value under key.
func (p *LRUProvider) Set(_ context.Context, key string, value []byte) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	p.lru.Add(key, buf)
	return nil
}

// Del removes key if present.
func (p *LRUProvider) Del(_ context.Context, key string) error {
	p.lru.Remove(key)
	return nil
}

// Close purges the cache.
func (p *LRUProvider) Close() error {
	p.lru.Purge()
	return nil
}
