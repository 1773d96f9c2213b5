package efipay

import (
    "bytes"
    "context"
    "crypto/tls"
    "encoding/json"
    "fmt"
    "io"
    "log"
    "net/http"
    "net/url"
    "strings"
    "time"

    "efipay-proxy/config"
    "efipay-proxy/models"
    "efipay-proxy/utils"
)

const (
    DefaultTokenTTL = 3600 * time.Second
    RequestTimeout  = 30 * time.Second
)

// AccessToken is a bearer token obtained with the client-credentials grant.
type AccessToken struct {
    Value      string
    ObtainedAt time.Time
    ExpiresAt  time.Time
}

type tokenResponse struct {
    AccessToken string `json:"access_token"`
    TokenType   string `json:"token_type"`
    ExpiresIn   int    `json:"expires_in"`
    Scope       string `json:"scope"`
}

// Client talks to the EfiPay PIX API.
type Client struct {
    clientID     string
    clientSecret string
    baseURL      string
    tokenPath    string
    userAgent    string
    timeout      time.Duration
    client       *http.Client
}

func NewClient(cfg config.EfiPayConfig) (*Client, error) {
    transport := &http.Transport{
        MaxIdleConns:        100,
        MaxIdleConnsPerHost: 20,
        IdleConnTimeout:     90 * time.Second,
        TLSHandshakeTimeout: 10 * time.Second,
    }

    // A EfiPay exige certificado de cliente em produção
    if cfg.CertFile != "" && cfg.KeyFile != "" {
        cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
        if err != nil {
            return nil, fmt.Errorf("error loading efipay client certificate: %v", err)
        }
        transport.TLSClientConfig = &tls.Config{
            Certificates: []tls.Certificate{cert},
            MinVersion:   tls.VersionTLS12,
        }
    }

    return NewClientWithHTTP(cfg, &http.Client{Transport: transport}), nil
}

// NewClientWithHTTP builds a client around an existing *http.Client.
func NewClientWithHTTP(cfg config.EfiPayConfig, httpClient *http.Client) *Client {
    timeout := cfg.Timeout
    if timeout <= 0 {
        timeout = RequestTimeout
    }
    tokenPath := cfg.TokenPath
    if tokenPath == "" {
        tokenPath = config.DefaultTokenPath
    }
    return &Client{
        clientID:     cfg.ClientID,
        clientSecret: cfg.ClientSecret,
        baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
        tokenPath:    "/" + strings.TrimLeft(tokenPath, "/"),
        userAgent:    cfg.UserAgent,
        timeout:      timeout,
        client:       httpClient,
    }
}

// GetAccessToken exchanges the configured credentials for a bearer token.
// It makes exactly one request and never retries.
func (c *Client) GetAccessToken(ctx context.Context) (*AccessToken, error) {
    startTime := time.Now()

    form := url.Values{}
    form.Set("grant_type", "client_credentials")

    ctx, cancel := context.WithTimeout(ctx, c.timeout)
    defer cancel()

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.tokenPath, strings.NewReader(form.Encode()))
    if err != nil {
        return nil, &models.AuthError{Reason: fmt.Sprintf("error creating token request: %v", err)}
    }

    req.Header.Set("Authorization", utils.BasicAuth(c.clientID, c.clientSecret))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    c.setUserAgent(req)

    resp, err := c.client.Do(req)
    if err != nil {
        return nil, &models.AuthError{Reason: fmt.Sprintf("error making token request: %v", err)}
    }
    defer resp.Body.Close()

    body, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, &models.AuthError{Status: resp.StatusCode, Reason: fmt.Sprintf("error reading token response: %v", err)}
    }

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        log.Printf("EfiPay token request failed with status %d in %v", resp.StatusCode, time.Since(startTime))
        return nil, &models.AuthError{Status: resp.StatusCode, Body: string(body)}
    }

    var token tokenResponse
    if err := json.Unmarshal(body, &token); err != nil {
        return nil, &models.AuthError{Status: resp.StatusCode, Body: string(body), Reason: fmt.Sprintf("error decoding token response: %v", err)}
    }

    if token.AccessToken == "" {
        return nil, &models.AuthError{Status: resp.StatusCode, Body: string(body), Reason: "no token in response"}
    }

    ttl := DefaultTokenTTL
    if token.ExpiresIn > 0 {
        ttl = time.Duration(token.ExpiresIn) * time.Second
    }

    now := time.Now()
    log.Printf("EfiPay token obtained in %v (expires in %v)", time.Since(startTime), ttl)

    return &AccessToken{
        Value:      token.AccessToken,
        ObtainedAt: now,
        ExpiresAt:  now.Add(ttl),
    }, nil
}

// CreateCob issues PUT /v2/cob/{txid}.
func (c *Client) CreateCob(ctx context.Context, token, txid string, payload *models.CobPayload) (*models.ProviderResponse, error) {
    body, err := json.Marshal(payload)
    if err != nil {
        return nil, fmt.Errorf("error marshaling cob payload: %v", err)
    }
    return c.Do(ctx, token, http.MethodPut, "v2/cob/"+url.PathEscape(txid), body)
}

// Do sends body to {baseURL}/{endpoint} with the bearer token and returns
// the raw provider answer whatever its status.
func (c *Client) Do(ctx context.Context, token, method, endpoint string, body []byte) (*models.ProviderResponse, error) {
    startTime := time.Now()

    ctx, cancel := context.WithTimeout(ctx, c.timeout)
    defer cancel()

    var reader io.Reader
    if len(body) > 0 {
        reader = bytes.NewReader(body)
    }

    target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
    req, err := http.NewRequestWithContext(ctx, method, target, reader)
    if err != nil {
        return nil, fmt.Errorf("error creating request: %v", err)
    }

    req.Header.Set("Authorization", "Bearer "+token)
    if reader != nil {
        req.Header.Set("Content-Type", "application/json")
    }
    req.Header.Set("Accept", "application/json")
    c.setUserAgent(req)

    resp, err := c.client.Do(req)
    if err != nil {
        return nil, fmt.Errorf("error making request: %v", err)
    }
    defer resp.Body.Close()

    respBody, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, fmt.Errorf("error reading response body: %v", err)
    }

    log.Printf("EfiPay %s /%s answered %d in %v", method, strings.TrimLeft(endpoint, "/"), resp.StatusCode, time.Since(startTime))

    return &models.ProviderResponse{
        Status: resp.StatusCode,
        Body:   respBody,
    }, nil
}

func (c *Client) setUserAgent(req *http.Request) {
    if c.userAgent != "" {
        req.Header.Set("User-Agent", c.userAgent)
    }
}
