package tokencache

import (
    "context"
    "os"
    "testing"
    "time"

    "github.com/go-redis/redis/v8"
    "github.com/stretchr/testify/require"
)

func TestMemory_GetSetExpire(t *testing.T) {
    ctx := context.Background()
    now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
    m := NewMemory()
    m.now = func() time.Time { return now }

    _, _, ok, err := m.Get(ctx)
    require.NoError(t, err)
    require.False(t, ok)

    require.NoError(t, m.Set(ctx, "tok", now.Add(time.Minute)))
    token, exp, ok, err := m.Get(ctx)
    require.NoError(t, err)
    require.True(t, ok)
    require.Equal(t, "tok", token)
    require.Equal(t, now.Add(time.Minute), exp)

    now = now.Add(time.Minute)
    _, _, ok, _ = m.Get(ctx)
    require.False(t, ok)
}

func TestMemory_Clear(t *testing.T) {
    ctx := context.Background()
    m := NewMemory()
    require.NoError(t, m.Set(ctx, "tok", time.Now().Add(time.Hour)))
    require.NoError(t, m.Clear(ctx))
    _, _, ok, _ := m.Get(ctx)
    require.False(t, ok)
}

// Skips unless REDIS_URL points at a disposable Redis.
func TestRedis_GetSet(t *testing.T) {
    url := os.Getenv("REDIS_URL")
    if url == "" {
        t.Skip("REDIS_URL not set; skipping redis token cache test")
    }
    opt, err := redis.ParseURL(url)
    require.NoError(t, err)
    client := redis.NewClient(opt)
    defer client.Close()

    ctx := context.Background()
    c := NewRedis(client, "efipay:test:"+time.Now().Format("150405.000000"))
    defer c.Clear(ctx)

    _, _, ok, err := c.Get(ctx)
    require.NoError(t, err)
    require.False(t, ok)

    require.NoError(t, c.Set(ctx, "tok", time.Now().Add(time.Minute)))
    token, exp, ok, err := c.Get(ctx)
    require.NoError(t, err)
    require.True(t, ok)
    require.Equal(t, "tok", token)
    require.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

    require.NoError(t, c.Clear(ctx))
    _, _, ok, _ = c.Get(ctx)
    require.False(t, ok)
}
