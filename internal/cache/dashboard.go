package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dashboardKeyPrefix = "inventory:dashboard"

// DashboardCache stores JSON encoded dashboard reads. Entries are dropped
// wholesale after every committed analytics run.
type DashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	if client == nil {
		return NewNoopDashboardCache()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisDashboardCache{client: client, ttl: ttl}
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode dashboard cache %s: %w", key, err)
	}
	return true, nil
}

func (c *redisDashboardCache) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode dashboard cache %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	_, err := deleteKeysWithPrefix(ctx, c.client, dashboardKeyPrefix)
	return err
}

func (n *noopDashboardCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (n *noopDashboardCache) Set(ctx context.Context, key string, value interface{}) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// DashboardKey builds the cache key of one read. Params are sorted so the
// same filter always maps to the same key; empty values are ignored.
func DashboardKey(name string, params map[string]string) string {
	var parts []string
	for k, v := range params {
		if v == "" {
			continue
		}
		parts = append(parts, k+"="+strings.ToUpper(v))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%s:%s:default", dashboardKeyPrefix, name)
	}

	sort.Strings(parts)
	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s:%s", dashboardKeyPrefix, name, hex.EncodeToString(hash[:]))
}
