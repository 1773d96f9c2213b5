package models

import "encoding/json"

// RelayRequest describes a call the caller wants tunneled to the provider.
type RelayRequest struct {
    Endpoint string          `json:"endpoint"`
    Method   string          `json:"method"`
    Body     json.RawMessage `json:"body"`
}

// RelayResult carries the provider answer back to the handler untouched.
type RelayResult struct {
    Status int
    Body   json.RawMessage
}
