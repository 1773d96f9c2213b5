package database

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "log"
    "net/http"
    "time"

    "efipay-proxy/models"
)

// RESTSink writes notifications through a PostgREST style endpoint
// (POST {baseURL}/rest/v1/{table}) authenticated with a service key.
type RESTSink struct {
    baseURL string
    apiKey  string
    table   string
    client  *http.Client
}

func NewRESTSink(baseURL, apiKey, table string, client *http.Client) *RESTSink {
    if client == nil {
        client = &http.Client{Timeout: 15 * time.Second}
    }
    return &RESTSink{
        baseURL: baseURL,
        apiKey:  apiKey,
        table:   table,
        client:  client,
    }
}

func (s *RESTSink) SaveNotification(ctx context.Context, n *models.Notification) (*models.SinkResult, error) {
    payload, err := json.Marshal(n)
    if err != nil {
        return nil, fmt.Errorf("error marshaling notification: %v", err)
    }

    url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table)
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
    if err != nil {
        return nil, fmt.Errorf("error creating sink request: %v", err)
    }

    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("apikey", s.apiKey)
    req.Header.Set("Authorization", "Bearer "+s.apiKey)
    req.Header.Set("Prefer", "return=representation")

    resp, err := s.client.Do(req)
    if err != nil {
        return nil, fmt.Errorf("error making sink request: %v", err)
    }
    defer resp.Body.Close()

    body, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, fmt.Errorf("error reading sink response: %v", err)
    }

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        log.Printf("Sink rejected notification %s: status=%d", n.ID, resp.StatusCode)
        return nil, &models.UpstreamError{Stage: "persist", Status: resp.StatusCode, Body: string(body)}
    }

    result := &models.SinkResult{Backend: "rest", Status: resp.StatusCode}
    if json.Valid(body) {
        result.Response = body
    }
    return result, nil
}
