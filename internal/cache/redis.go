package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/raaihank/record-sentinel/internal/masking"
	"github.com/raaihank/record-sentinel/internal/records"
	"go.uber.org/zap"
)

// RecordCache keeps JSON-encoded records in Redis
type RecordCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRecordCache connects to Redis and creates a record cache
func NewRecordCache(config *Config, logger *zap.Logger) (*RecordCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		// The parse error may echo the URL, password included.
		return nil, fmt.Errorf("failed to parse Redis URL %s", masking.ConnectionString(config.RedisURL))
	}

	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	cache := NewRecordCacheFromClient(redis.NewClient(opts), config, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.client.Ping(ctx).Err(); err != nil {
		cache.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Record cache initialized successfully",
		zap.String("redis_url", masking.ConnectionString(config.RedisURL)),
		zap.Int("max_connections", config.MaxConnections),
		zap.Duration("default_ttl", config.DefaultTTL))

	return cache, nil
}

// NewRecordCacheFromClient wraps an existing Redis client without pinging it
func NewRecordCacheFromClient(client *redis.Client, config *Config, logger *zap.Logger) *RecordCache {
	return &RecordCache{
		client: client,
		config: config,
		logger: logger,
	}
}

// Get returns the cached record. The boolean is false on a miss.
func (rc *RecordCache) Get(ctx context.Context, id uuid.UUID) (records.Record, bool, error) {
	key := rc.recordKey(id)

	data, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		rc.misses.Add(1)
		rc.logger.Debug("Cache miss", zap.String("key", key))
		return records.Record{}, false, nil
	} else if err != nil {
		rc.misses.Add(1)
		return records.Record{}, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	var record records.Record
	if err := json.Unmarshal(data, &record); err != nil {
		rc.misses.Add(1)
		rc.logger.Error("Failed to unmarshal cached record", zap.String("key", key), zap.Error(err))
		rc.client.Del(ctx, key)
		return records.Record{}, false, nil
	}

	rc.hits.Add(1)
	rc.logger.Debug("Cache hit", zap.String("key", key))
	return record, true, nil
}

// Store caches a record with the default TTL
func (rc *RecordCache) Store(ctx context.Context, record records.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record for caching: %w", err)
	}

	key := rc.recordKey(record.ID)
	if err := rc.client.Set(ctx, key, data, rc.config.DefaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache record: %w", err)
	}

	rc.logger.Debug("Record cached", zap.String("key", key))
	return nil
}

// Invalidate drops a cached record
func (rc *RecordCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := rc.client.Del(ctx, rc.recordKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached record: %w", err)
	}
	return nil
}

// GetStats returns cache performance statistics
func (rc *RecordCache) GetStats(ctx context.Context) (*CacheStats, error) {
	info, err := rc.client.Info(ctx, "memory").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis info: %w", err)
	}

	stats := rc.counters()
	stats.MemoryUsage = parseUsedMemory(info)

	if keys, err := rc.client.DBSize(ctx).Result(); err == nil {
		stats.TotalKeys = keys
	}

	return stats, nil
}

// Clear removes all cached records under the key prefix
func (rc *RecordCache) Clear(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, rc.config.KeyPrefix+":record:*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	for start := 0; start < len(keys); start += clearBatchSize {
		end := min(start+clearBatchSize, len(keys))
		if err := rc.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	rc.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return nil
}

// Close closes the Redis connection
func (rc *RecordCache) Close() error {
	if rc.client != nil {
		return rc.client.Close()
	}
	return nil
}

func (rc *RecordCache) counters() *CacheStats {
	stats := &CacheStats{
		Hits:   rc.hits.Load(),
		Misses: rc.misses.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}
	return stats
}

func (rc *RecordCache) recordKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:record:%s", rc.config.KeyPrefix, id)
}

// parseUsedMemory extracts used_memory from a Redis INFO reply
func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if memStr, ok := strings.CutPrefix(line, "used_memory:"); ok {
			if mem, err := strconv.ParseInt(memStr, 10, 64); err == nil {
				return mem
			}
		}
	}
	return 0
}
