package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akorolkov/postline/utils/log"
	"github.com/go-redis/redis/v8"
)

// pageKeyPrefix namespaces page entries so Clear can drop them without
// touching anything else living in the same redis DB.
const pageKeyPrefix = "page:"

type RedisCache struct {
	inner *redis.Client
	ttl   time.Duration
}

// GetRedisClient builds a client from the REDIS_* env, like every other
// redis consumer in the codebase.
func GetRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{inner: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.inner.Get(ctx, pageKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Log.Warn("fail to read page cache: ", err)
		}
		return nil, false
	}
	return body, true
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.inner.Set(ctx, pageKeyPrefix+key, body, c.ttl).Err(); err != nil {
		log.Log.Warn("fail to write page cache: ", err)
	}
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.inner.Scan(ctx, 0, pageKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.inner.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
