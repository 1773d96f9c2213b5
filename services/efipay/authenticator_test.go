package efipay

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "efipay-proxy/models"
    "efipay-proxy/services/tokencache"
)

type fakeSource struct {
    calls int
    ttl   time.Duration
    err   error
}

func (f *fakeSource) GetAccessToken(_ context.Context) (*AccessToken, error) {
    f.calls++
    if f.err != nil {
        return nil, f.err
    }
    now := time.Now()
    return &AccessToken{Value: "tok", ObtainedAt: now, ExpiresAt: now.Add(f.ttl)}, nil
}

func TestAuthenticator_NoCacheFetchesEveryTime(t *testing.T) {
    src := &fakeSource{ttl: time.Hour}
    auth := NewAuthenticator(src, nil)

    for i := 0; i < 3; i++ {
        tok, err := auth.Token(context.Background())
        require.NoError(t, err)
        require.Equal(t, "tok", tok)
    }
    require.Equal(t, 3, src.calls)
}

func TestAuthenticator_CacheReusesToken(t *testing.T) {
    src := &fakeSource{ttl: time.Hour}
    auth := NewAuthenticator(src, tokencache.NewMemory())

    for i := 0; i < 3; i++ {
        _, err := auth.Token(context.Background())
        require.NoError(t, err)
    }
    require.Equal(t, 1, src.calls)

    auth.Invalidate(context.Background())
    _, err := auth.Token(context.Background())
    require.NoError(t, err)
    require.Equal(t, 2, src.calls)
}

func TestAuthenticator_ShortLivedTokenNotCached(t *testing.T) {
    // TTL abaixo do skew: nunca entra no cache
    src := &fakeSource{ttl: 30 * time.Second}
    auth := NewAuthenticator(src, tokencache.NewMemory())

    _, err := auth.Token(context.Background())
    require.NoError(t, err)
    _, err = auth.Token(context.Background())
    require.NoError(t, err)
    require.Equal(t, 2, src.calls)
}

func TestAuthenticator_PropagatesAuthError(t *testing.T) {
    src := &fakeSource{err: &models.AuthError{Status: 401, Body: "denied"}}
    auth := NewAuthenticator(src, tokencache.NewMemory())

    _, err := auth.Token(context.Background())
    var authErr *models.AuthError
    require.True(t, errors.As(err, &authErr))
    require.Equal(t, 401, authErr.Status)
}
