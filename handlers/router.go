package handlers

import (
    "net/http"

    "github.com/gorilla/mux"

    "efipay-proxy/middleware"
    "efipay-proxy/services/auth"
)

// Routes lists the handlers to mount. Nil handlers are not routed.
type Routes struct {
    Charge   *ChargeHandler
    Relay    *RelayHandler
    Webhook  *WebhookHandler
    Internal *InternalHandler
    Queue    *QueueAdminHandler
    Health   *HealthHandler

    // CallerAuth protege cobrança e relay quando configurado
    CallerAuth        *auth.JWTService
    WebhookAllowedIPs []string
}

func NewRouter(routes Routes) *mux.Router {
    router := mux.NewRouter()
    router.Use(middleware.RecoverMiddleware)
    router.Use(middleware.CORSMiddleware)
    router.Use(middleware.LoggingMiddleware)
    router.Use(middleware.SecurityHeadersMiddleware)

    router.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)
    router.NotFoundHandler = http.HandlerFunc(NotFound)

    protect := func(h http.HandlerFunc) http.Handler {
        if routes.CallerAuth == nil {
            return h
        }
        return middleware.AuthMiddleware(routes.CallerAuth)(h)
    }

    if routes.Charge != nil {
        router.Handle("/", protect(routes.Charge.CreateCharge)).Methods("POST", "OPTIONS")
        router.Handle("/efipay-proxy", protect(routes.Charge.CreateCharge)).Methods("POST", "OPTIONS")
    }

    if routes.Relay != nil {
        router.Handle("/relay", protect(routes.Relay.Relay)).Methods("POST", "OPTIONS")
    }

    if routes.Webhook != nil {
        // todos os métodos chegam ao handler, que responde 405 para não-POST
        webhook := middleware.IPWhitelistMiddleware(routes.WebhookAllowedIPs)(http.HandlerFunc(routes.Webhook.HandleNotification))
        router.Handle("/webhook", webhook)
        router.Handle("/webhook/pix", webhook)
    }

    if routes.Internal != nil {
        router.HandleFunc("/internal/token", routes.Internal.RequireInternalSecret(routes.Internal.GenerateToken)).Methods("POST")
    }

    if routes.Queue != nil {
        q := routes.Queue
        router.HandleFunc("/internal/queue/stats", q.RequireInternalSecret(q.Stats)).Methods("GET")
        router.HandleFunc("/internal/queue/failed", q.RequireInternalSecret(q.FailedJobs)).Methods("GET")
        router.HandleFunc("/internal/queue/failed/{id}/retry", q.RequireInternalSecret(q.RetryJob)).Methods("POST")
    }

    if routes.Health != nil {
        router.HandleFunc("/health", routes.Health.Health).Methods("GET")
    }

    return router
}
