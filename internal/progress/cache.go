package progress

import (
	"context"
	"fmt"
	"time"

	"memberhub/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	completionSetTTL       = 24 * time.Hour
	completionSetKeyPrefix = "progress:set:user" // 某个会员已完成的课程节集合
)

// Cache 基于 Redis 的完成度写透缓存。key 缺失时读路径回落到数据库。
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis and pings once. Returns nil when no address is
// configured, which disables caching entirely.
func NewCache(cfg config.Config) (*Cache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Cache{client: client, ttl: completionSetTTL}, nil
}

// Close 关闭 Redis 客户端（在程序退出时调用）。
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) setKey(userID uint) string {
	return fmt.Sprintf("%s:%d", completionSetKeyPrefix, userID)
}

// Add 写路径：成功写数据库后调用。
func (c *Cache) Add(ctx context.Context, userID uint, lessonID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	key := c.setKey(userID)
	if err := c.client.SAdd(ctx, key, lessonID).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

// Remove 写路径：成功写数据库后调用。
func (c *Cache) Remove(ctx context.Context, userID uint, lessonID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.SRem(ctx, c.setKey(userID), lessonID).Err()
}

// Members returns the cached completion set. ok is false on a cold key so
// callers fall back to the database.
func (c *Cache) Members(ctx context.Context, userID uint) ([]string, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	lessonIDs, err := c.client.SMembers(ctx, c.setKey(userID)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(lessonIDs) == 0 {
		// 空集合与缓存未命中无法区分，当作未命中处理
		return nil, false, nil
	}
	return lessonIDs, true, nil
}

// Warm replaces the cached set with the authoritative database view.
func (c *Cache) Warm(ctx context.Context, userID uint, lessonIDs []string) error {
	if c == nil || c.client == nil || len(lessonIDs) == 0 {
		return nil
	}
	key := c.setKey(userID)
	members := make([]interface{}, 0, len(lessonIDs))
	for _, id := range lessonIDs {
		members = append(members, id)
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the cached set, used when the roster entry is removed.
func (c *Cache) Invalidate(ctx context.Context, userID uint) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.setKey(userID)).Err()
}
