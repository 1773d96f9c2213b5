package models

import (
    "fmt"
    "strings"
)

// ConfigError lists required settings that are missing at startup.
type ConfigError struct {
    Missing []string
}

func (e *ConfigError) Error() string {
    return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// ValidationError rejects inbound input before any outbound call is made.
type ValidationError struct {
    Fields  []string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Message != "" {
        return e.Message
    }
    return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// AuthError means the client-credentials exchange did not yield a token.
type AuthError struct {
    Status int
    Body   string
    Reason string
}

func (e *AuthError) Error() string {
    if e.Reason != "" {
        return fmt.Sprintf("efipay auth failed: %s", e.Reason)
    }
    return fmt.Sprintf("efipay auth failed with status %d", e.Status)
}

// UpstreamError is a failed provider or sink call made after authentication.
type UpstreamError struct {
    Stage  string
    Status int
    Body   string
    Err    error
}

func (e *UpstreamError) Error() string {
    if e.Err != nil {
        return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
    }
    return fmt.Sprintf("%s failed with status %d", e.Stage, e.Status)
}

func (e *UpstreamError) Unwrap() error {
    return e.Err
}

// SignatureError is a webhook whose HMAC does not match.
type SignatureError struct {
    Reason string
}

func (e *SignatureError) Error() string {
    return "invalid signature: " + e.Reason
}

// ForbiddenError is a relay target outside the allow-list.
type ForbiddenError struct {
    Method   string
    Endpoint string
}

func (e *ForbiddenError) Error() string {
    return fmt.Sprintf("route %s %s is not allowed", e.Method, e.Endpoint)
}
