package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CompletionCache stores LLM completions in Redis keyed by a hash of the
// prompt, so identical rewrite and review prompts are not billed twice.
type CompletionCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
	hits   int64
	misses int64
}

// NewCompletionCache creates a Redis-backed completion cache
func NewCompletionCache(config *Config, logger *zap.Logger) (*CompletionCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns

	cache := &CompletionCache{
		client: redis.NewClient(opts),
		config: config,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cache.client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Completion cache initialized",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Duration("default_ttl", config.DefaultTTL))

	return cache, nil
}

// Get returns the cached completion for a prompt, if present.
func (c *CompletionCache) Get(ctx context.Context, prompt string) (*Entry, bool) {
	key := c.promptKey(prompt)

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	} else if err != nil {
		c.logger.Error("Cache lookup failed", zap.Error(err))
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.Error("Failed to unmarshal cached completion", zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	c.logger.Debug("Cache hit", zap.String("key", key))
	return &entry, true
}

// Store caches a completion for a prompt with the default TTL.
func (c *CompletionCache) Store(ctx context.Context, prompt string, entry *Entry) error {
	entry.CachedAt = time.Now()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal completion for caching: %w", err)
	}

	key := c.promptKey(prompt)
	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Error("Failed to cache completion", zap.Error(err))
		return fmt.Errorf("failed to cache completion: %w", err)
	}

	c.logger.Debug("Completion cached", zap.String("key", key), zap.String("model", entry.Model))
	return nil
}

// GetStats returns cache performance statistics
func (c *CompletionCache) GetStats(ctx context.Context) (*Stats, error) {
	info, err := c.client.Info(ctx, "memory").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis info: %w", err)
	}

	stats := &Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	for _, line := range strings.Split(info, "\r\n") {
		if memStr, ok := strings.CutPrefix(line, "used_memory:"); ok {
			if mem, err := strconv.ParseInt(memStr, 10, 64); err == nil {
				stats.MemoryUsage = mem
			}
		}
	}

	if keys, err := c.client.DBSize(ctx).Result(); err == nil {
		stats.TotalKeys = keys
	}

	return stats, nil
}

// Clear removes all cached completions under this cache's prefix.
func (c *CompletionCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.config.KeyPrefix+":*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	for i := 0; i < len(keys); i += 100 {
		end := i + 100
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	c.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection
func (c *CompletionCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// promptKey derives a stable cache key from a prompt.
func (c *CompletionCache) promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%s:cmp:%s", c.config.KeyPrefix, hex.EncodeToString(sum[:8]))
}

// maskRedisURL masks credentials in a Redis URL for logging
func maskRedisURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	if i := strings.LastIndex(parts[0], ":"); i > strings.Index(parts[0], "//") {
		parts[0] = parts[0][:i+1] + "***"
	}
	return parts[0] + "@" + parts[1]
}
