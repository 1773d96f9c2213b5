package config

import (
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "efipay-proxy/models"
)

func setRequired(t *testing.T) {
    t.Helper()
    t.Setenv("EFIPAY_CLIENT_ID", "client")
    t.Setenv("EFIPAY_CLIENT_SECRET", "secret")
    t.Setenv("EFIPAY_PIX_KEY", "pix@example.com")
}

func TestLoad_Defaults(t *testing.T) {
    setRequired(t)

    cfg := Load()
    require.NoError(t, cfg.Validate())
    require.Equal(t, DefaultBaseURL, cfg.EfiPay.BaseURL)
    require.Equal(t, DefaultTokenPath, cfg.EfiPay.TokenPath)
    require.Equal(t, 30*time.Second, cfg.EfiPay.Timeout)
    require.Equal(t, "3000", cfg.Server.Port)
    require.Equal(t, "none", cfg.Redis.TokenCache)
    require.Equal(t, DefaultRelayRoutes, cfg.Relay.AllowedRoutes)
    require.False(t, cfg.WebhookEnabled())
    require.False(t, cfg.NeedsRedis())
}

func TestLoad_Overrides(t *testing.T) {
    setRequired(t)
    t.Setenv("EFIPAY_BASE_URL", "https://pix-h.api.efipay.com.br/")
    t.Setenv("RELAY_ALLOWED_ROUTES", "GET v2/cob/*")
    t.Setenv("TOKEN_CACHE", "Redis")
    t.Setenv("EFIPAY_TIMEOUT", "5")
    t.Setenv("PORT", "8080")

    cfg := Load()
    require.NoError(t, cfg.Validate())
    require.Equal(t, "https://pix-h.api.efipay.com.br", cfg.EfiPay.BaseURL)
    require.Equal(t, []string{"GET v2/cob/*"}, cfg.Relay.AllowedRoutes)
    require.Equal(t, "redis", cfg.Redis.TokenCache)
    require.Equal(t, 5*time.Second, cfg.EfiPay.Timeout)
    require.Equal(t, "8080", cfg.Server.Port)
    require.True(t, cfg.NeedsRedis())
    require.NotEmpty(t, cfg.Redis.URL)
}

func TestValidate_MissingCredentials(t *testing.T) {
    t.Setenv("EFIPAY_CLIENT_ID", "")
    t.Setenv("EFIPAY_CLIENT_SECRET", "")
    t.Setenv("EFIPAY_PIX_KEY", "")

    err := Load().Validate()
    require.Error(t, err)

    var cfgErr *models.ConfigError
    require.True(t, errors.As(err, &cfgErr))
    require.ElementsMatch(t, []string{"EFIPAY_CLIENT_ID", "EFIPAY_CLIENT_SECRET", "EFIPAY_PIX_KEY"}, cfgErr.Missing)
}

func TestValidate_WebhookSink(t *testing.T) {
    setRequired(t)
    t.Setenv("WEBHOOK_SECRET", "whsec")
    t.Setenv("WEBHOOK_SINK", "rest")
    t.Setenv("WEBHOOK_SINK_URL", "")
    t.Setenv("WEBHOOK_SINK_KEY", "")

    var cfgErr *models.ConfigError
    require.True(t, errors.As(Load().Validate(), &cfgErr))
    require.Equal(t, []string{"WEBHOOK_SINK_URL", "WEBHOOK_SINK_KEY"}, cfgErr.Missing)

    t.Setenv("WEBHOOK_SINK", "bolt")
    require.NoError(t, Load().Validate())

    t.Setenv("WEBHOOK_SINK", "kafka")
    require.Error(t, Load().Validate())
}

func TestValidate_CertPair(t *testing.T) {
    setRequired(t)
    t.Setenv("EFIPAY_CERT_FILE", "cert.pem")
    t.Setenv("EFIPAY_KEY_FILE", "")
    require.Error(t, Load().Validate())
}
