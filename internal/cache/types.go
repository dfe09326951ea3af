package cache

import "time"

// Config contains Redis completion-cache configuration
type Config struct {
	RedisURL     string        `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix    string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	DefaultTTL   time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
}

// Stats reports cache performance counters
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
	TotalKeys   int64   `json:"total_keys"`
	MemoryUsage int64   `json:"memory_usage"`
}

// Entry is a cached LLM completion
type Entry struct {
	Completion string    `json:"completion"`
	Model      string    `json:"model"`
	CachedAt   time.Time `json:"cached_at"`
}
