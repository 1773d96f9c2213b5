package middleware

import (
    "log"
    "net"
    "net/http"
    "runtime/debug"
    "strings"

    "efipay-proxy/utils"
)

// IPWhitelistMiddleware only lets listed source addresses through. An empty
// list disables the check.
func IPWhitelistMiddleware(allowedIPs []string) func(http.Handler) http.Handler {
    ipMap := make(map[string]bool)
    for _, ip := range allowedIPs {
        ipMap[strings.TrimSpace(ip)] = true
    }

    return func(next http.Handler) http.Handler {
        if len(ipMap) == 0 {
            return next
        }
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            clientIP := getClientIPFromRequest(r)

            if !ipMap[clientIP] {
                log.Printf("Access denied for IP: %s, endpoint: %s", clientIP, r.URL.Path)
                utils.SendErrorResponse(w, http.StatusForbidden, "Access denied from your IP address")
                return
            }

            next.ServeHTTP(w, r)
        })
    }
}

// SecurityHeadersMiddleware adiciona headers de segurança
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("X-Content-Type-Options", "nosniff")
        w.Header().Set("X-Frame-Options", "DENY")
        w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
        w.Header().Set("Content-Security-Policy", "default-src 'none'")

        // respostas com dados de cobrança nunca vão para cache
        w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
        w.Header().Set("Pragma", "no-cache")
        w.Header().Set("Expires", "0")

        next.ServeHTTP(w, r)
    })
}

// RecoverMiddleware turns a panic into the generic 500 envelope.
func RecoverMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                log.Printf("Panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
                utils.SendErrorResponse(w, http.StatusInternalServerError, "internal error")
            }
        }()
        next.ServeHTTP(w, r)
    })
}

func getClientIPFromRequest(r *http.Request) string {
    if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
        ips := strings.Split(ip, ",")
        return strings.TrimSpace(ips[0])
    }

    if ip := r.Header.Get("X-Real-IP"); ip != "" {
        return ip
    }

    if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
        return ip
    }

    if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
        return host
    }
    return r.RemoteAddr
}
