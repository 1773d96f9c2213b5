package efipay

import (
    "context"
    "log"
    "time"

    "efipay-proxy/services/tokencache"
)

// RefreshSkew is subtracted from the provider TTL before a token is cached.
const RefreshSkew = 60 * time.Second

// TokenSource fetches a brand new token from the provider.
type TokenSource interface {
    GetAccessToken(ctx context.Context) (*AccessToken, error)
}

// Authenticator hands out bearer tokens, going through an optional cache.
// With a nil cache every call performs a fresh exchange.
type Authenticator struct {
    source TokenSource
    cache  tokencache.Cache
}

func NewAuthenticator(source TokenSource, cache tokencache.Cache) *Authenticator {
    return &Authenticator{
        source: source,
        cache:  cache,
    }
}

func (a *Authenticator) Token(ctx context.Context) (string, error) {
    if a.cache != nil {
        token, _, ok, err := a.cache.Get(ctx)
        if err != nil {
            log.Printf("Warning: token cache read failed, fetching a new token: %v", err)
        } else if ok {
            return token, nil
        }
    }

    token, err := a.source.GetAccessToken(ctx)
    if err != nil {
        return "", err
    }

    if a.cache != nil {
        expiresAt := token.ExpiresAt.Add(-RefreshSkew)
        if expiresAt.After(time.Now()) {
            if err := a.cache.Set(ctx, token.Value, expiresAt); err != nil {
                log.Printf("Warning: token cache write failed: %v", err)
            }
        }
    }

    return token.Value, nil
}

// Invalidate drops a cached token the provider rejected.
func (a *Authenticator) Invalidate(ctx context.Context) {
    if a.cache == nil {
        return
    }
    if err := a.cache.Clear(ctx); err != nil {
        log.Printf("Warning: token cache clear failed: %v", err)
    }
}
