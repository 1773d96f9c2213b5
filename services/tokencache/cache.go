// Package tokencache holds provider bearer tokens between requests.
//
// A cache is always an explicit value built at startup and injected into
// the authenticator; there is no package level token.
package tokencache

import (
    "context"
    "sync"
    "time"
)

// Cache stores one bearer token together with its expiry.
type Cache interface {
    Get(ctx context.Context) (token string, expiresAt time.Time, ok bool, err error)
    Set(ctx context.Context, token string, expiresAt time.Time) error
    Clear(ctx context.Context) error
}

// Memory is an in-process Cache.
type Memory struct {
    mu        sync.RWMutex
    token     string
    expiresAt time.Time
    now       func() time.Time
}

func NewMemory() *Memory {
    return &Memory{now: time.Now}
}

func (m *Memory) Get(_ context.Context) (string, time.Time, bool, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()

    if m.token == "" || !m.now().Before(m.expiresAt) {
        return "", time.Time{}, false, nil
    }
    return m.token, m.expiresAt, true, nil
}

func (m *Memory) Set(_ context.Context, token string, expiresAt time.Time) error {
    m.mu.Lock()
    defer m.mu.Unlock()

    m.token = token
    m.expiresAt = expiresAt
    return nil
}

func (m *Memory) Clear(_ context.Context) error {
    m.mu.Lock()
    defer m.mu.Unlock()

    m.token = ""
    m.expiresAt = time.Time{}
    return nil
}
