package handlers

import (
    "fmt"
    "log"
    "net/http"
    "strings"
    "time"

    "efipay-proxy/models"
    "efipay-proxy/services/auth"
    "efipay-proxy/utils"
)

type InternalHandler struct {
    jwtService     *auth.JWTService
    internalSecret string
}

// NewInternalHandler cria handler para endpoints internos (emissão de tokens)
func NewInternalHandler(jwtService *auth.JWTService, internalSecret string) (*InternalHandler, error) {
    if jwtService == nil {
        return nil, fmt.Errorf("jwt service is required")
    }
    if internalSecret == "" {
        return nil, fmt.Errorf("internal secret is required")
    }
    return &InternalHandler{
        jwtService:     jwtService,
        internalSecret: internalSecret,
    }, nil
}

// RequireInternalSecret verifica o header X-Internal-Secret
func (h *InternalHandler) RequireInternalSecret(next http.HandlerFunc) http.HandlerFunc {
    return requireInternalSecret(h.internalSecret, next)
}

func requireInternalSecret(expected string, next http.HandlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        secret := r.Header.Get("X-Internal-Secret")
        if secret == "" || !utils.SecretEqual(secret, expected) {
            log.Printf("Invalid or missing internal secret from %s", r.RemoteAddr)
            utils.SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
            return
        }
        next.ServeHTTP(w, r)
    }
}

// GenerateToken emite um token para um sistema chamador
func (h *InternalHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
    var req models.TokenRequest
    if err := decodeJSON(r, w, &req); err != nil {
        log.Printf("Error decoding internal token generation request: %v", err)
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
        return
    }

    req.Subject = strings.TrimSpace(req.Subject)
    if req.Subject == "" {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Subject is required")
        return
    }

    caller := models.Caller{
        Subject: req.Subject,
        Name:    req.Name,
        Scope:   req.Scope,
    }

    token, expiresAt, err := h.jwtService.GenerateToken(caller, time.Duration(req.TTLSeconds)*time.Second)
    if err != nil {
        log.Printf("Error generating token for %s: %v", req.Subject, err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Error generating token")
        return
    }

    log.Printf("Generated caller token for %s (expires %s)", req.Subject, utils.FormatISO(expiresAt))

    utils.SendSuccessResponse(w, models.TokenResponse{
        Token:     token,
        ExpiresAt: expiresAt,
        Caller:    caller,
    })
}
