package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/idextract/idextract/internal/kyc"
)

// DefaultCachePrefix is prepended to the identity number to form cache keys.
const DefaultCachePrefix = "identity:"

// RecordCache is a best effort key-value copy of saved records.
type RecordCache interface {
	Put(ctx context.Context, rec kyc.Record) error
	// Get returns nil, nil when the identity is not cached.
	Get(ctx context.Context, identity string) (*kyc.Record, error)
}

// RedisCache stores one hash per record holding only the non-empty fields.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultCachePrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Key returns the cache key for an identity number.
func (c *RedisCache) Key(identity string) string {
	return c.prefix + identity
}

func (c *RedisCache) Put(ctx context.Context, rec kyc.Record) error {
	fields := rec.NonEmpty()
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	if err := c.client.HSet(ctx, c.Key(rec.IdentityNumber), values).Err(); err != nil {
		return fmt.Errorf("cache hset: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, identity string) (*kyc.Record, error) {
	m, err := c.client.HGetAll(ctx, c.Key(identity)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache hgetall: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	rec := kyc.Record{
		IdentityNumber: m[string(kyc.IdentityNumber)],
		SecondaryID:    m[string(kyc.SecondaryID)],
		DOB:            m[string(kyc.DOB)],
		Gender:         m[string(kyc.Gender)],
		Name:           m[string(kyc.Name)],
		Address:        m[string(kyc.Address)],
		UserID:         m[string(kyc.UserID)],
	}
	return &rec, nil
}

// Cache is the optional cache capability handed to the record store. The
// zero value is unavailable.
type Cache struct {
	c RecordCache
}

// Available wraps a reachable cache.
func Available(c RecordCache) Cache { return Cache{c: c} }

// Unavailable is the capability used when no cache could be reached at startup.
func Unavailable() Cache { return Cache{} }

// Get returns the cache and whether it is available.
func (c Cache) Get() (RecordCache, bool) { return c.c, c.c != nil }
