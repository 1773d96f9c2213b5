package models

import "time"

// Caller representa um sistema autorizado a usar o proxy
type Caller struct {
    Subject string `json:"subject"`
    Name    string `json:"name,omitempty"`
    Scope   string `json:"scope,omitempty"`
}

// TokenRequest is the body of POST /internal/token.
type TokenRequest struct {
    Subject    string `json:"subject"`
    Name       string `json:"name"`
    Scope      string `json:"scope"`
    TTLSeconds int    `json:"ttl_seconds"`
}

// TokenResponse is returned when a caller token is minted.
type TokenResponse struct {
    Token     string    `json:"token"`
    ExpiresAt time.Time `json:"expires_at"`
    Caller    Caller    `json:"caller"`
}
