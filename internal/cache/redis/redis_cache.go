// Package redis implements the extraction cache on Redis. Entries are written with
// SET NX so a key, once filled, is never overwritten.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"ordercheck/internal/config"
	"ordercheck/internal/domain"
	"ordercheck/internal/port"
)

const keyPrefix = "ordercheck:"

// Cache stores extracted documents in Redis.
type Cache struct {
	client  *redis.Client
	locker  *redislock.Client
	ttl     time.Duration
	lockTTL time.Duration
	log     *logrus.Logger
}

var (
	_ port.ExtractionCache = (*Cache)(nil)
	_ port.CacheLocker     = (*Cache)(nil)
)

// New connects to the Redis server named by cfg. The connection is lazy, so an
// unreachable server surfaces as errors from Get and Put.
func New(cfg *config.CacheConfig, log *logrus.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewWithClient(client,
		time.Duration(cfg.TTLHours)*time.Hour,
		time.Duration(cfg.LockTimeoutSecs)*time.Second,
		log)
}

// NewWithClient wraps an existing client. A zero ttl keeps entries until evicted.
func NewWithClient(client *redis.Client, ttl, lockTTL time.Duration, log *logrus.Logger) *Cache {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &Cache{
		client:  client,
		locker:  redislock.New(client),
		ttl:     ttl,
		lockTTL: lockTTL,
		log:     log,
	}
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (*domain.Document, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(val, &doc); err != nil {
		return nil, false, fmt.Errorf("decoding cached document: %w", err)
	}
	return &doc, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	stored, err := c.client.SetNX(ctx, keyPrefix+key, data, c.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !stored {
		c.log.WithField("key", key).Debug("cache.redis: key already filled")
	}
	return nil
}

// Obtain takes the fill lock for key, waiting up to the lock timeout.
func (c *Cache) Obtain(ctx context.Context, key string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), int(c.lockTTL/(100*time.Millisecond))),
	}
	lock, err := c.locker.Obtain(ctx, keyPrefix+"lock:"+key, c.lockTTL, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock for %s held elsewhere: %w", key, err)
	}
	if err != nil {
		return nil, fmt.Errorf("obtaining lock: %w", err)
	}
	return func() {
		// Release with a fresh context so a cancelled run still frees the lock.
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			c.log.WithError(err).WithField("key", key).Warn("cache.redis: releasing lock failed")
		}
	}, nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
