package tokencache

import (
    "context"
    "fmt"
    "time"

    "github.com/go-redis/redis/v8"
)

const DefaultRedisKey = "efipay:access_token"

// Redis shares the token between every proxy instance using the same key.
type Redis struct {
    client *redis.Client
    key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
    if key == "" {
        key = DefaultRedisKey
    }
    return &Redis{client: client, key: key}
}

func (r *Redis) Get(ctx context.Context) (string, time.Time, bool, error) {
    pipe := r.client.TxPipeline()
    getCmd := pipe.Get(ctx, r.key)
    ttlCmd := pipe.PTTL(ctx, r.key)
    if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
        return "", time.Time{}, false, fmt.Errorf("failed to read token from redis: %v", err)
    }

    token, err := getCmd.Result()
    if err == redis.Nil || token == "" {
        return "", time.Time{}, false, nil
    }
    if err != nil {
        return "", time.Time{}, false, fmt.Errorf("failed to read token from redis: %v", err)
    }

    ttl := ttlCmd.Val()
    if ttl <= 0 {
        return "", time.Time{}, false, nil
    }
    return token, time.Now().Add(ttl), true, nil
}

func (r *Redis) Set(ctx context.Context, token string, expiresAt time.Time) error {
    ttl := time.Until(expiresAt)
    if ttl <= 0 {
        return nil
    }
    if err := r.client.Set(ctx, r.key, token, ttl).Err(); err != nil {
        return fmt.Errorf("failed to store token in redis: %v", err)
    }
    return nil
}

func (r *Redis) Clear(ctx context.Context) error {
    if err := r.client.Del(ctx, r.key).Err(); err != nil {
        return fmt.Errorf("failed to clear token in redis: %v", err)
    }
    return nil
}
