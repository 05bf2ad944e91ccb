package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"slide-generator/internal/common/database"
	"slide-generator/internal/models"
)

// CachedRender records which deck state produced the file at Path.
type CachedRender struct {
	Fingerprint string `json:"fingerprint"`
	Path        string `json:"path"`
}

// Cache remembers recent renders so unchanged decks are not rebuilt.
type Cache interface {
	Get(ctx context.Context, id string) (CachedRender, bool, error)
	Put(ctx context.Context, id string, entry CachedRender) error
	Invalidate(ctx context.Context, id string) error
}

// Fingerprint hashes everything that affects the rendered output.
func Fingerprint(d *models.Deck) string {
	payload, _ := json.Marshal(struct {
		Slides []models.Slide        `json:"slides"`
		Theme  models.ThemeOverrides `json:"theme"`
	}{d.Slides, d.Theme})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	CachedRender
	expires time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, id string) (CachedRender, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return CachedRender{}, false, nil
	}
	if c.now().After(e.expires) {
		delete(c.entries, id)
		return CachedRender{}, false, nil
	}
	return e.CachedRender, true, nil
}

func (c *MemoryCache) Put(_ context.Context, id string, entry CachedRender) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = memoryEntry{CachedRender: entry, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// RedisCache stores entries as JSON under "<prefix>:render:<id>" with a TTL.
type RedisCache struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisCache(client *database.RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) key(id string) string {
	return c.client.Key("render", id)
}

func (c *RedisCache) Get(ctx context.Context, id string) (CachedRender, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id))
	if errors.Is(err, redis.Nil) {
		return CachedRender{}, false, nil
	}
	if err != nil {
		return CachedRender{}, false, err
	}
	var entry CachedRender
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return CachedRender{}, false, nil
	}
	return entry, true, nil
}

func (c *RedisCache) Put(ctx context.Context, id string, entry CachedRender) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(id), data, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id))
}
