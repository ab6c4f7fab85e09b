package utils

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const (
	propertyCachePrefix  = "properties:list"
	propertyCacheVersion = "properties:version"
	revokedTokenPrefix   = "auth:revoked"

	localCacheSize = 256
)

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Cache stores rendered listing pages and revoked token ids. Without a redis
// client, listing pages fall back to an in-process LRU and token revocation
// is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration

	local        *expirable.LRU[string, []byte]
	localVersion atomic.Int64
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	c := &Cache{client: client, ttl: ttl}
	if client == nil {
		c.local = expirable.NewLRU[string, []byte](localCacheSize, nil, ttl)
	}
	return c
}

// Enabled reports whether redis backs the cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) hasLocal() bool {
	return c != nil && c.local != nil
}

func (c *Cache) GetCached(ctx context.Context, key string, dest interface{}) (bool, error) {
	var data []byte
	switch {
	case c.Enabled():
		raw, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		data = raw
	case c.hasLocal():
		raw, ok := c.local.Get(key)
		if !ok {
			return false, nil
		}
		data = raw
	default:
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *Cache) SetCached(ctx context.Context, key string, value interface{}) error {
	if !c.Enabled() && !c.hasLocal() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.Enabled() {
		return c.client.Set(ctx, key, data, c.ttl).Err()
	}
	c.local.Add(key, data)
	return nil
}

// PropertyListKey scopes a listing cache key by caller role and the current
// catalog version so any write makes older pages unreachable.
func (c *Cache) PropertyListKey(ctx context.Context, role string, queryParams map[string]string) (string, error) {
	var version int64
	switch {
	case c.Enabled():
		v, err := c.client.Get(ctx, propertyCacheVersion).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return "", err
		}
		version = v
	case c.hasLocal():
		version = c.localVersion.Load()
	default:
		return "", nil
	}
	prefix := fmt.Sprintf("%s:v%d:%s", propertyCachePrefix, version, role)
	return GenerateQueryCacheKey(prefix, queryParams), nil
}

// InvalidateProperties bumps the catalog version.
func (c *Cache) InvalidateProperties(ctx context.Context) error {
	switch {
	case c.Enabled():
		return c.client.Incr(ctx, propertyCacheVersion).Err()
	case c.hasLocal():
		c.localVersion.Add(1)
		c.local.Purge()
	}
	return nil
}

// RevokeToken denies a token id until its natural expiry.
func (c *Cache) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if !c.Enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedTokenPrefix+":"+jti, "1", ttl).Err()
}

func (c *Cache) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if !c.Enabled() || jti == "" {
		return false, nil
	}
	n, err := c.client.Exists(ctx, revokedTokenPrefix+":"+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return errors.New("redis disabled")
	}
	return c.client.Ping(ctx).Err()
}

func GenerateQueryCacheKey(prefix string, queryParams map[string]string) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(queryParams[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	hashStr := hex.EncodeToString(hash[:])

	return prefix + ":" + hashStr
}
