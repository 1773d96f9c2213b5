package relay

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "net/url"
    "path"
    "strings"

    "efipay-proxy/models"
)

// Authenticator yields a bearer token for the provider.
type Authenticator interface {
    Token(ctx context.Context) (string, error)
    Invalidate(ctx context.Context)
}

// Requester sends an authenticated call to the provider.
type Requester interface {
    Do(ctx context.Context, token, method, endpoint string, body []byte) (*models.ProviderResponse, error)
}

// Route is one allowed METHOD + path pattern pair.
type Route struct {
    Method  string
    Pattern string
}

type Service struct {
    auth      Authenticator
    requester Requester
    routes    []Route
}

// NewService builds a relay restricted to routes, each written as
// "METHOD pattern" (e.g. "GET v2/cob/*").
func NewService(auth Authenticator, requester Requester, routes []string) (*Service, error) {
    parsed, err := ParseRoutes(routes)
    if err != nil {
        return nil, err
    }
    return &Service{
        auth:      auth,
        requester: requester,
        routes:    parsed,
    }, nil
}

func ParseRoutes(entries []string) ([]Route, error) {
    routes := make([]Route, 0, len(entries))
    for _, entry := range entries {
        fields := strings.Fields(entry)
        if len(fields) != 2 {
            return nil, fmt.Errorf("invalid relay route %q: expected \"METHOD pattern\"", entry)
        }
        pattern := strings.TrimLeft(fields[1], "/")
        if _, err := path.Match(pattern, ""); err != nil {
            return nil, fmt.Errorf("invalid relay route %q: %v", entry, err)
        }
        routes = append(routes, Route{
            Method:  strings.ToUpper(fields[0]),
            Pattern: pattern,
        })
    }
    return routes, nil
}

// Allowed reports whether method and endpoint match an allow-list entry.
// endpoint must already be normalized.
func (s *Service) Allowed(method, endpoint string) bool {
    p := endpoint
    if i := strings.IndexByte(p, '?'); i >= 0 {
        p = p[:i]
    }
    for _, r := range s.routes {
        if r.Method != method && r.Method != "*" {
            continue
        }
        if ok, _ := path.Match(r.Pattern, p); ok {
            return true
        }
    }
    return false
}

// NormalizeEndpoint strips leading slashes and refuses anything that could
// leave the provider base URL.
func NormalizeEndpoint(endpoint string) (string, bool) {
    endpoint = strings.TrimSpace(endpoint)
    if strings.Contains(endpoint, "://") || strings.Contains(endpoint, "\\") {
        return "", false
    }
    endpoint = strings.TrimLeft(endpoint, "/")
    if endpoint == "" {
        return "", false
    }

    p := endpoint
    if i := strings.IndexByte(p, '?'); i >= 0 {
        p = p[:i]
    }
    // segmentos são checados já decodificados; %2e%2e e %2f não passam
    for _, segment := range strings.Split(p, "/") {
        decoded, err := url.PathUnescape(segment)
        if err != nil {
            return "", false
        }
        if decoded == ".." || decoded == "." || strings.ContainsAny(decoded, "/\\") {
            return "", false
        }
    }
    return endpoint, true
}

// Relay tunnels req to the provider. The method, endpoint and body bytes
// reach the provider exactly as the caller sent them.
func (s *Service) Relay(ctx context.Context, req models.RelayRequest) (*models.RelayResult, error) {
    var missing []string
    if strings.TrimSpace(req.Endpoint) == "" {
        missing = append(missing, "endpoint")
    }
    if strings.TrimSpace(req.Method) == "" {
        missing = append(missing, "method")
    }
    if isAbsent(req.Body) {
        missing = append(missing, "body")
    }
    if len(missing) > 0 {
        return nil, &models.ValidationError{Fields: missing}
    }

    method := strings.ToUpper(strings.TrimSpace(req.Method))
    endpoint, ok := NormalizeEndpoint(req.Endpoint)
    if !ok {
        return nil, &models.ValidationError{Fields: []string{"endpoint"}, Message: "invalid endpoint"}
    }

    if !s.Allowed(method, endpoint) {
        log.Printf("Relay refused %s /%s: not in allow-list", method, endpoint)
        return nil, &models.ForbiddenError{Method: method, Endpoint: endpoint}
    }

    token, err := s.auth.Token(ctx)
    if err != nil {
        log.Printf("Error obtaining efipay token for relay: %v", err)
        return nil, err
    }

    resp, err := s.requester.Do(ctx, token, method, endpoint, []byte(req.Body))
    if err != nil {
        return nil, &models.UpstreamError{Stage: "relay", Err: err}
    }

    if !resp.OK() {
        if resp.Status == http.StatusUnauthorized {
            s.auth.Invalidate(ctx)
        }
        return nil, &models.UpstreamError{Stage: "relay", Status: resp.Status, Body: string(resp.Body)}
    }

    return &models.RelayResult{
        Status: resp.Status,
        Body:   asJSON(resp.Body),
    }, nil
}

func isAbsent(body json.RawMessage) bool {
    trimmed := bytes.TrimSpace(body)
    return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// asJSON keeps valid JSON as is and wraps anything else as a JSON string.
func asJSON(body []byte) json.RawMessage {
    if len(bytes.TrimSpace(body)) == 0 {
        return json.RawMessage("null")
    }
    if json.Valid(body) {
        return json.RawMessage(body)
    }
    quoted, _ := json.Marshal(string(body))
    return json.RawMessage(quoted)
}
