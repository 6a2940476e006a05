package kvstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "replystack:"

// Redis backs the Store with a redis instance so the orchestrator daemon and
// any page-side workers share one credential/location cache.
type Redis struct {
	c *redis.Client
}

func NewRedis(addr, pass string, db int) *Redis {
	return &Redis{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := r.c.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (r *Redis) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, keyPrefix+key, b, 0).Err()
}

func (r *Redis) Clear(ctx context.Context, key string) error {
	return r.c.Del(ctx, keyPrefix+key).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}
