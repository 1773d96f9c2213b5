package handlers

import (
    "context"
    "net/http"
    "runtime"
    "time"

    "efipay-proxy/utils"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
    startTime time.Time
    checks    map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
    if checks == nil {
        checks = map[string]HealthCheck{}
    }
    return &HealthHandler{
        startTime: time.Now(),
        checks:    checks,
    }
}

type healthResponse struct {
    Status     string            `json:"status"`
    Time       string            `json:"time"`
    Uptime     string            `json:"uptime"`
    GoVersion  string            `json:"go_version"`
    Components map[string]string `json:"components,omitempty"`
}

// Health always answers 200; a failing dependency only marks it "degraded".
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
    ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
    defer cancel()

    health := healthResponse{
        Status:     "ok",
        Time:       time.Now().Format(time.RFC3339),
        Uptime:     time.Since(h.startTime).String(),
        GoVersion:  runtime.Version(),
        Components: map[string]string{},
    }

    for name, check := range h.checks {
        checkCtx, checkCancel := context.WithTimeout(ctx, 500*time.Millisecond)
        if err := check(checkCtx); err != nil {
            health.Status = "degraded"
            health.Components[name] = "error"
        } else {
            health.Components[name] = "connected"
        }
        checkCancel()
    }

    utils.SendJSON(w, http.StatusOK, health)
}
