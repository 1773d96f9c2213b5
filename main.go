package main

import (
    "context"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "runtime"
    "syscall"
    "time"

    "github.com/go-redis/redis/v8"

    "efipay-proxy/config"
    "efipay-proxy/database"
    "efipay-proxy/handlers"
    "efipay-proxy/queue"
    "efipay-proxy/services/auth"
    "efipay-proxy/services/charge"
    "efipay-proxy/services/efipay"
    "efipay-proxy/services/relay"
    "efipay-proxy/services/tokencache"
    "efipay-proxy/services/webhook"
    "efipay-proxy/worker"
)

func main() {
    // Configurar logging com timestamp preciso
    log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds | log.LUTC)
    log.Printf("Server starting with %d CPUs available", runtime.NumCPU())

    cfg := config.Load()
    if err := cfg.Validate(); err != nil {
        log.Fatalf("Invalid configuration: %v", err)
    }
    log.Printf("Configuration loaded successfully")

    checks := map[string]handlers.HealthCheck{}
    var closers []func() error

    // Redis é opcional: cache de token compartilhado e fila de webhooks
    var redisClient *redis.Client
    if cfg.NeedsRedis() {
        opt, err := redis.ParseURL(cfg.Redis.URL)
        if err != nil {
            log.Fatalf("Invalid Redis URL: %v", err)
        }
        redisClient = redis.NewClient(opt)

        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        err = redisClient.Ping(ctx).Err()
        cancel()
        if err != nil {
            log.Fatalf("Failed to connect to Redis: %v", err)
        }
        log.Println("Successfully connected to Redis")

        checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
        closers = append(closers, redisClient.Close)
    }

    // Cliente EfiPay e autenticação
    efiClient, err := efipay.NewClient(cfg.EfiPay)
    if err != nil {
        log.Fatalf("Failed to initialize EfiPay client: %v", err)
    }

    var cache tokencache.Cache
    switch cfg.Redis.TokenCache {
    case "memory":
        cache = tokencache.NewMemory()
    case "redis":
        cache = tokencache.NewRedis(redisClient, tokencache.DefaultRedisKey)
    }
    authenticator := efipay.NewAuthenticator(efiClient, cache)
    log.Printf("EfiPay authenticator ready (token cache: %s)", cfg.Redis.TokenCache)

    chargeHandler, err := handlers.NewChargeHandler(
        charge.NewService(authenticator, efiClient, cfg.EfiPay.PixKey, cfg.Charge.PlanLabel),
    )
    if err != nil {
        log.Fatalf("Failed to initialize charge handler: %v", err)
    }

    relayService, err := relay.NewService(authenticator, efiClient, cfg.Relay.AllowedRoutes)
    if err != nil {
        log.Fatalf("Invalid relay allow-list: %v", err)
    }
    relayHandler, err := handlers.NewRelayHandler(relayService)
    if err != nil {
        log.Fatalf("Failed to initialize relay handler: %v", err)
    }

    routes := handlers.Routes{
        Charge:            chargeHandler,
        Relay:             relayHandler,
        WebhookAllowedIPs: cfg.Webhook.AllowedIPs,
    }

    // Webhook: sink durável, opcionalmente atrás da fila Redis
    var notificationWorker *worker.Worker
    if cfg.WebhookEnabled() {
        sink, closeSink, check, err := buildSink(cfg)
        if err != nil {
            log.Fatalf("Failed to initialize webhook sink: %v", err)
        }
        if closeSink != nil {
            closers = append(closers, closeSink)
        }
        if check != nil {
            checks["sink"] = check
        }

        var receiverSink webhook.Sink = sink
        if cfg.Webhook.Async {
            jobQueue := queue.NewQueueWithClient(redisClient, queue.DefaultQueueName)
            receiverSink = jobQueue

            workerConcurrency := cfg.Redis.WorkerConcurrency
            if workerConcurrency < 1 {
                workerConcurrency = 1
            } else if workerConcurrency > 8 {
                workerConcurrency = 8 // Limitar para evitar sobrecarga
            }

            notificationWorker = worker.NewWorker(jobQueue, sink)
            notificationWorker.Start(workerConcurrency)
            log.Printf("Started notification worker with %d threads", workerConcurrency)

            checks["queue"] = handlers.QueueHealthCheck(jobQueue)
            if cfg.Auth.InternalSecret != "" {
                queueHandler, err := handlers.NewQueueAdminHandler(jobQueue, cfg.Auth.InternalSecret)
                if err != nil {
                    log.Fatalf("Failed to initialize queue admin handler: %v", err)
                }
                routes.Queue = queueHandler
            }
        }

        webhookHandler, err := handlers.NewWebhookHandler(webhook.NewReceiver(cfg.Webhook.Secret, receiverSink))
        if err != nil {
            log.Fatalf("Failed to initialize webhook handler: %v", err)
        }
        routes.Webhook = webhookHandler
        log.Printf("Webhook receiver enabled (sink: %s, async: %v)", cfg.Webhook.Sink, cfg.Webhook.Async)
    }

    // Autenticação dos sistemas chamadores
    if cfg.Auth.JWTSecret != "" {
        jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
        routes.CallerAuth = jwtService

        if cfg.Auth.InternalSecret != "" {
            internalHandler, err := handlers.NewInternalHandler(jwtService, cfg.Auth.InternalSecret)
            if err != nil {
                log.Fatalf("Failed to initialize internal handler: %v", err)
            }
            routes.Internal = internalHandler
        }
        log.Println("Caller authentication enabled")
    } else {
        log.Println("Warning: PROXY_JWT_SECRET not set, charge and relay routes are open")
    }

    routes.Health = handlers.NewHealthHandler(checks)
    router := handlers.NewRouter(routes)

    srv := &http.Server{
        Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
        Handler:        router,
        ReadTimeout:    15 * time.Second,
        WriteTimeout:   cfg.EfiPay.Timeout*2 + 5*time.Second, // token + cobrança
        IdleTimeout:    120 * time.Second,
        MaxHeaderBytes: 1 << 20,
    }

    go func() {
        log.Printf("Server starting on port %s", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("Server error: %v", err)
        }
    }()

    stop := make(chan os.Signal, 1)
    signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

    <-stop
    log.Println("Shutdown signal received, gracefully shutting down...")

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer shutdownCancel()

    log.Println("Shutting down HTTP server...")
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Printf("Server forced to shutdown: %v", err)
    }

    if notificationWorker != nil {
        log.Println("Stopping notification worker...")
        notificationWorker.Stop()
    }

    for i := len(closers) - 1; i >= 0; i-- {
        if err := closers[i](); err != nil {
            log.Printf("Error closing resource: %v", err)
        }
    }

    log.Println("Server exited properly")
}

// buildSink opens the durable store selected by WEBHOOK_SINK.
func buildSink(cfg *config.Config) (webhook.Sink, func() error, handlers.HealthCheck, error) {
    switch cfg.Webhook.Sink {
    case "rest":
        client := &http.Client{Timeout: cfg.EfiPay.Timeout}
        return database.NewRESTSink(cfg.Webhook.SinkURL, cfg.Webhook.SinkKey, cfg.Webhook.SinkTable, client), nil, nil, nil

    case "mysql", "postgres":
        dbCfg := cfg.Database
        dbCfg.Driver = cfg.Webhook.Sink
        dbCfg.Table = cfg.Webhook.SinkTable

        var db *database.Connection
        var err error
        for retries := 0; retries < 5; retries++ {
            db, err = database.NewConnection(dbCfg)
            if err == nil {
                break
            }
            retryDelay := time.Duration(retries+1) * time.Second
            log.Printf("Failed to connect to database (attempt %d/5): %v. Retrying in %v...",
                retries+1, err, retryDelay)
            time.Sleep(retryDelay)
        }
        if err != nil {
            return nil, nil, nil, fmt.Errorf("failed to connect to database after retries: %v", err)
        }

        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if err := db.EnsureSchema(ctx); err != nil {
            db.Close()
            return nil, nil, nil, err
        }
        log.Println("Successfully connected to database")
        return db, db.Close, db.Ping, nil

    case "bolt":
        store, err := database.NewBoltStore(cfg.Webhook.BoltPath)
        if err != nil {
            return nil, nil, nil, err
        }
        return store, store.Close, nil, nil

    default:
        return nil, nil, nil, fmt.Errorf("unknown webhook sink %q", cfg.Webhook.Sink)
    }
}
