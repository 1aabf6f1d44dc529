package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for Redis cache configuration
const (
	defaultScanBatchSize = 100
	defaultDashboardTTL  = 60 * time.Second

	dashboardKeyPrefix = "dashboard:"
)

// RedisConfig holds the connection settings for a cache-owned Redis client
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DashboardCache stores serialized dashboard snapshots with a short TTL.
// Get returns (nil, nil) on a cache miss so callers can fall through to
// recomputing the snapshot.
type DashboardCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) error
}

// RedisDashboardCache implements DashboardCache using Redis
type RedisDashboardCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RedisDashboardCacheOption is a functional option for configuring the cache
type RedisDashboardCacheOption func(*RedisDashboardCache)

// WithDashboardTTL sets the default TTL used when Set is called with ttl 0
func WithDashboardTTL(ttl time.Duration) RedisDashboardCacheOption {
	return func(c *RedisDashboardCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithDashboardLogger sets the logger for the cache
func WithDashboardLogger(logger *zap.Logger) RedisDashboardCacheOption {
	return func(c *RedisDashboardCache) {
		c.logger = logger
	}
}

// NewRedisDashboardCache creates a new Redis-based dashboard cache
func NewRedisDashboardCache(cfg RedisConfig, opts ...RedisDashboardCacheOption) (*RedisDashboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisDashboardCache{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		defaultTTL: defaultDashboardTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisDashboardCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisDashboardCacheWithClient(client *redis.Client, opts ...RedisDashboardCacheOption) *RedisDashboardCache {
	cache := &RedisDashboardCache{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		defaultTTL: defaultDashboardTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// cacheKey hashes the logical key so query parameters never leak into Redis
// key space and key length stays bounded.
func cacheKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return dashboardKeyPrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a snapshot from cache
func (c *RedisDashboardCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err == redis.Nil {
		// Cache miss
		c.logger.Debug("Cache miss for dashboard snapshot", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get dashboard snapshot from cache",
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get snapshot from cache: %w", err)
	}

	c.logger.Debug("Cache hit for dashboard snapshot", zap.String("key", key))
	return data, nil
}

// Set stores a snapshot in cache
func (c *RedisDashboardCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if len(data) == 0 {
		return nil
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, cacheKey(key), data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set dashboard snapshot in cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set snapshot in cache: %w", err)
	}

	c.logger.Debug("Cached dashboard snapshot",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a snapshot from cache
func (c *RedisDashboardCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		c.logger.Error("Failed to delete dashboard snapshot from cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to delete snapshot from cache: %w", err)
	}

	c.logger.Debug("Deleted dashboard snapshot from cache", zap.String("key", key))
	return nil
}

// InvalidateAll removes all cached dashboard snapshots
func (c *RedisDashboardCache) InvalidateAll(ctx context.Context) error {
	// Use SCAN to find all dashboard keys to avoid blocking Redis with KEYS command
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, dashboardKeyPrefix+"*", defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("Failed to scan dashboard cache keys", zap.Error(err))
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("Failed to delete dashboard cache keys", zap.Error(err))
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Invalidated dashboard cache",
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close releases any resources held by the cache
func (c *RedisDashboardCache) Close() error {
	// Only close client if we own it
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisDashboardCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisDashboardCache implements DashboardCache
var _ DashboardCache = (*RedisDashboardCache)(nil)

// InMemoryDashboardCache provides an in-memory implementation for testing and
// single-instance deployments without Redis.
type InMemoryDashboardCache struct {
	mu         sync.RWMutex
	entries    map[string]inMemoryEntry
	defaultTTL time.Duration
}

type inMemoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewInMemoryDashboardCache creates a new in-memory dashboard cache
func NewInMemoryDashboardCache(defaultTTL time.Duration) *InMemoryDashboardCache {
	if defaultTTL <= 0 {
		defaultTTL = defaultDashboardTTL
	}
	return &InMemoryDashboardCache{
		entries:    make(map[string]inMemoryEntry),
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a snapshot, lazily evicting expired entries
func (c *InMemoryDashboardCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(key)]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, cacheKey(key))
		return nil, nil
	}
	return entry.data, nil
}

// Set stores a snapshot
func (c *InMemoryDashboardCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if len(data) == 0 {
		return nil
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(key)] = inMemoryEntry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a snapshot
func (c *InMemoryDashboardCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(key))
	return nil
}

// InvalidateAll removes all snapshots
func (c *InMemoryDashboardCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]inMemoryEntry)
	return nil
}

// Ensure InMemoryDashboardCache implements DashboardCache
var _ DashboardCache = (*InMemoryDashboardCache)(nil)
