package models

import (
    "encoding/json"
    "time"
)

// Notification is the normalized record written to the persistence sink.
type Notification struct {
    ID         string          `json:"id"`
    TxID       string          `json:"txid"`
    ReceivedAt time.Time       `json:"received_at"`
    Valor      string          `json:"valor"`
    Payer      json.RawMessage `json:"payer"`
    Raw        json.RawMessage `json:"raw"`
}

// SinkResult is what a sink reports after storing a notification.
type SinkResult struct {
    Backend  string          `json:"backend"`
    Status   int             `json:"status"`
    Response json.RawMessage `json:"response,omitempty"`
}

// WebhookAck is returned to the provider once every record was stored.
type WebhookAck struct {
    Received int          `json:"received"`
    Stored   int          `json:"stored"`
    Results  []SinkResult `json:"results"`
}
