// Package quotes holds the short-lived quote cache warmed by the sync run and
// read by the API.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"integritywatch/internal/scraper"
)

const DefaultTTL = 15 * time.Minute

type Cache interface {
	Save(ctx context.Context, q *scraper.Quote) error
	// GetLatest returns nil, nil on a miss.
	GetLatest(ctx context.Context, symbol string) (*scraper.Quote, error)
}

type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: "integritywatch:quote:", ttl: ttl}
}

func (c *RedisCache) Save(ctx context.Context, q *scraper.Quote) error {
	if q == nil {
		return nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key(q.Symbol), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("save quote %s: %w", q.Symbol, err)
	}
	return nil
}

func (c *RedisCache) GetLatest(ctx context.Context, symbol string) (*scraper.Quote, error) {
	data, err := c.client.Get(ctx, c.prefix+key(symbol)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote %s: %w", symbol, err)
	}

	var q scraper.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}
	return &q, nil
}

// MemoryCache is used when no redis address is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	quote   scraper.Quote
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Save(_ context.Context, q *scraper.Quote) error {
	if q == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[key(q.Symbol)] = memoryEntry{quote: *q, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) GetLatest(_ context.Context, symbol string) (*scraper.Quote, error) {
	c.mu.RLock()
	e, ok := c.entries[key(symbol)]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return nil, nil
	}
	q := e.quote
	return &q, nil
}

func key(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
