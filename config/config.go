package config

import (
    "log"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"

    "efipay-proxy/database"
    "efipay-proxy/models"
    "efipay-proxy/utils"
)

const (
    DefaultBaseURL   = "https://pix.api.efipay.com.br"
    DefaultTokenPath = "/oauth/token"
    DefaultUserAgent = "NaHoraSaude-Proxy/1.0"
    DefaultPlanLabel = "NaHoraSaude"
)

// DefaultRelayRoutes is the allow-list used when RELAY_ALLOWED_ROUTES is unset.
var DefaultRelayRoutes = []string{
    "GET v2/cob",
    "GET v2/cob/*",
    "PUT v2/cob/*",
    "PATCH v2/cob/*",
    "GET v2/cobv/*",
    "GET v2/pix",
    "GET v2/pix/*",
    "GET v2/loc/*/qrcode",
}

type Config struct {
    EfiPay   EfiPayConfig
    Charge   ChargeConfig
    Relay    RelayConfig
    Webhook  WebhookConfig
    Database database.DatabaseConfig
    Server   ServerConfig
    Redis    RedisConfig
    Auth     AuthConfig
}

type EfiPayConfig struct {
    ClientID     string
    ClientSecret string
    PixKey       string
    BaseURL      string
    TokenPath    string
    UserAgent    string
    CertFile     string
    KeyFile      string
    Timeout      time.Duration
}

type ChargeConfig struct {
    PlanLabel string
}

type RelayConfig struct {
    AllowedRoutes []string
}

type WebhookConfig struct {
    Secret     string
    Sink       string // rest, mysql, postgres, bolt
    SinkURL    string
    SinkKey    string
    SinkTable  string
    BoltPath   string
    Async      bool
    AllowedIPs []string
}

type ServerConfig struct {
    Port string
}

type RedisConfig struct {
    URL               string
    TokenCache        string // none, memory, redis
    WorkerConcurrency int
}

type AuthConfig struct {
    JWTSecret      string
    Issuer         string
    InternalSecret string
}

func Load() *Config {
    if err := godotenv.Load(); err != nil {
        log.Printf("Warning: Error loading .env file: %v", err)
    }

    cfg := &Config{
        EfiPay: EfiPayConfig{
            ClientID:     os.Getenv("EFIPAY_CLIENT_ID"),
            ClientSecret: os.Getenv("EFIPAY_CLIENT_SECRET"),
            PixKey:       os.Getenv("EFIPAY_PIX_KEY"),
            BaseURL:      strings.TrimRight(getenv("EFIPAY_BASE_URL", DefaultBaseURL), "/"),
            TokenPath:    getenv("EFIPAY_TOKEN_PATH", DefaultTokenPath),
            UserAgent:    getenv("EFIPAY_USER_AGENT", DefaultUserAgent),
            CertFile:     os.Getenv("EFIPAY_CERT_FILE"),
            KeyFile:      os.Getenv("EFIPAY_KEY_FILE"),
            Timeout:      time.Duration(getenvInt("EFIPAY_TIMEOUT", 30)) * time.Second,
        },
        Charge: ChargeConfig{
            PlanLabel: getenv("CHARGE_PLAN_LABEL", DefaultPlanLabel),
        },
        Relay: RelayConfig{
            AllowedRoutes: utils.SplitList(os.Getenv("RELAY_ALLOWED_ROUTES")),
        },
        Webhook: WebhookConfig{
            Secret:     os.Getenv("WEBHOOK_SECRET"),
            Sink:       strings.ToLower(getenv("WEBHOOK_SINK", "rest")),
            SinkURL:    strings.TrimRight(os.Getenv("WEBHOOK_SINK_URL"), "/"),
            SinkKey:    os.Getenv("WEBHOOK_SINK_KEY"),
            SinkTable:  getenv("WEBHOOK_SINK_TABLE", "pix_notifications"),
            BoltPath:   getenv("BOLT_PATH", "webhooks.db"),
            Async:      getenvBool("WEBHOOK_ASYNC", false),
            AllowedIPs: utils.SplitList(os.Getenv("WEBHOOK_ALLOWED_IPS")),
        },
        Database: database.DatabaseConfig{
            Driver: getenv("DB_DRIVER", "mysql"),
            DSN:    os.Getenv("DB_DSN"),
        },
        Server: ServerConfig{
            Port: getenv("PORT", "3000"),
        },
        Redis: RedisConfig{
            URL:               os.Getenv("REDIS_URL"),
            TokenCache:        strings.ToLower(getenv("TOKEN_CACHE", "none")),
            WorkerConcurrency: getenvInt("WORKER_CONCURRENCY", 2),
        },
        Auth: AuthConfig{
            JWTSecret:      os.Getenv("PROXY_JWT_SECRET"),
            Issuer:         getenv("PROXY_JWT_ISSUER", "efipay-proxy"),
            InternalSecret: os.Getenv("INTERNAL_API_SECRET"),
        },
    }

    if len(cfg.Relay.AllowedRoutes) == 0 {
        cfg.Relay.AllowedRoutes = DefaultRelayRoutes
    }

    if cfg.NeedsRedis() && cfg.Redis.URL == "" {
        cfg.Redis.URL = "redis://localhost:6379/0"
        log.Printf("Warning: REDIS_URL not set, using default: %s", cfg.Redis.URL)
    }

    log.Printf("Config loaded: base_url=%s token_cache=%s webhook_sink=%s async=%v relay_routes=%d",
        cfg.EfiPay.BaseURL, cfg.Redis.TokenCache, cfg.Webhook.Sink, cfg.Webhook.Async, len(cfg.Relay.AllowedRoutes))

    return cfg
}

// Validate checks the settings the proxy cannot run without.
func (c *Config) Validate() error {
    var missing []string
    if c.EfiPay.ClientID == "" {
        missing = append(missing, "EFIPAY_CLIENT_ID")
    }
    if c.EfiPay.ClientSecret == "" {
        missing = append(missing, "EFIPAY_CLIENT_SECRET")
    }
    if c.EfiPay.PixKey == "" {
        missing = append(missing, "EFIPAY_PIX_KEY")
    }
    if (c.EfiPay.CertFile == "") != (c.EfiPay.KeyFile == "") {
        missing = append(missing, "EFIPAY_CERT_FILE/EFIPAY_KEY_FILE (both or neither)")
    }

    switch c.Redis.TokenCache {
    case "none", "memory", "redis":
    default:
        missing = append(missing, "TOKEN_CACHE (none|memory|redis)")
    }

    // O webhook só é exigido quando há segredo configurado
    if c.Webhook.Secret != "" {
        switch c.Webhook.Sink {
        case "rest":
            if c.Webhook.SinkURL == "" {
                missing = append(missing, "WEBHOOK_SINK_URL")
            }
            if c.Webhook.SinkKey == "" {
                missing = append(missing, "WEBHOOK_SINK_KEY")
            }
        case "mysql", "postgres":
            if c.Database.DSN == "" {
                missing = append(missing, "DB_DSN")
            }
        case "bolt":
            if c.Webhook.BoltPath == "" {
                missing = append(missing, "BOLT_PATH")
            }
        default:
            missing = append(missing, "WEBHOOK_SINK (rest|mysql|postgres|bolt)")
        }
    }

    if len(missing) > 0 {
        return &models.ConfigError{Missing: missing}
    }
    return nil
}

// WebhookEnabled reports whether the webhook route should be mounted.
func (c *Config) WebhookEnabled() bool {
    return c.Webhook.Secret != ""
}

// NeedsRedis reports whether any component was configured to use Redis.
func (c *Config) NeedsRedis() bool {
    return c.Redis.TokenCache == "redis" || (c.WebhookEnabled() && c.Webhook.Async)
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func getenvInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Printf("Warning: invalid %s=%q, using default %d", key, v, def)
        return def
    }
    return n
}

func getenvBool(key string, def bool) bool {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    b, err := strconv.ParseBool(v)
    if err != nil {
        log.Printf("Warning: invalid %s=%q, using default %v", key, v, def)
        return def
    }
    return b
}
