package middleware

import (
    "context"
    "log"
    "net/http"
    "strings"

    "efipay-proxy/models"
    "efipay-proxy/services/auth"
    "efipay-proxy/utils"
)

type contextKey string

const CallerContextKey contextKey = "caller"

// AuthMiddleware exige um token de sistema chamador válido
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            if r.Method == http.MethodOptions {
                next.ServeHTTP(w, r)
                return
            }

            authHeader := r.Header.Get("Authorization")
            if authHeader == "" {
                log.Printf("Missing Authorization header from %s", getClientIPFromRequest(r))
                utils.SendErrorResponse(w, http.StatusUnauthorized, "Missing authorization header")
                return
            }

            // Verificar formato "Bearer <token>"
            parts := strings.Split(authHeader, " ")
            if len(parts) != 2 || parts[0] != "Bearer" {
                log.Printf("Invalid Authorization header format from %s", getClientIPFromRequest(r))
                utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid authorization header format")
                return
            }

            caller, err := jwtService.ValidateToken(parts[1])
            if err != nil {
                log.Printf("Token validation failed from %s: %v", getClientIPFromRequest(r), err)

                var message string
                switch err {
                case auth.ErrTokenExpired:
                    message = "Token expired"
                case auth.ErrInvalidToken:
                    message = "Invalid token"
                default:
                    message = "Authentication failed"
                }

                utils.SendErrorResponse(w, http.StatusUnauthorized, message)
                return
            }

            ctx := context.WithValue(r.Context(), CallerContextKey, caller)
            next.ServeHTTP(w, r.WithContext(ctx))
        })
    }
}

// GetCallerFromContext extrai o sistema chamador do contexto da requisição
func GetCallerFromContext(ctx context.Context) *models.Caller {
    caller, ok := ctx.Value(CallerContextKey).(*models.Caller)
    if !ok {
        return nil
    }
    return caller
}

// CallerName is used in log lines.
func CallerName(ctx context.Context) string {
    if caller := GetCallerFromContext(ctx); caller != nil {
        return caller.Subject
    }
    return "anonymous"
}
