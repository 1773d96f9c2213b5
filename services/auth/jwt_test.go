package auth

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/require"

    "efipay-proxy/models"
)

func TestGenerateAndValidate(t *testing.T) {
    svc := NewJWTService("secret", "efipay-proxy")

    token, expiresAt, err := svc.GenerateToken(models.Caller{Subject: "franquia-app", Name: "App", Scope: "charge"}, time.Hour)
    require.NoError(t, err)
    require.NotEmpty(t, token)
    require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

    caller, err := svc.ValidateToken(token)
    require.NoError(t, err)
    require.Equal(t, &models.Caller{Subject: "franquia-app", Name: "App", Scope: "charge"}, caller)
}

func TestGenerateToken_DurationBounds(t *testing.T) {
    svc := NewJWTService("secret", "efipay-proxy")
    now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
    svc.now = func() time.Time { return now }

    _, expiresAt, err := svc.GenerateToken(models.Caller{Subject: "s"}, 0)
    require.NoError(t, err)
    require.Equal(t, now.Add(CallerTokenDuration), expiresAt)

    _, expiresAt, err = svc.GenerateToken(models.Caller{Subject: "s"}, 365*24*time.Hour)
    require.NoError(t, err)
    require.Equal(t, now.Add(MaxTokenDuration), expiresAt)

    _, _, err = svc.GenerateToken(models.Caller{Subject: " "}, time.Hour)
    require.ErrorIs(t, err, ErrMissingSubject)
}

func TestValidateToken_Expired(t *testing.T) {
    svc := NewJWTService("secret", "efipay-proxy")
    svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

    token, _, err := svc.GenerateToken(models.Caller{Subject: "s"}, time.Hour)
    require.NoError(t, err)

    svc.now = time.Now
    _, err = svc.ValidateToken(token)
    require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_Rejections(t *testing.T) {
    svc := NewJWTService("secret", "efipay-proxy")

    other := NewJWTService("other-secret", "efipay-proxy")
    wrongKey, _, err := other.GenerateToken(models.Caller{Subject: "s"}, time.Hour)
    require.NoError(t, err)

    foreign := NewJWTService("secret", "someone-else")
    wrongIssuer, _, err := foreign.GenerateToken(models.Caller{Subject: "s"}, time.Hour)
    require.NoError(t, err)

    now := time.Now()
    wrongType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
        TokenType: "refresh",
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   "s",
            Issuer:    "efipay-proxy",
            ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
        },
    }).SignedString([]byte("secret"))
    require.NoError(t, err)

    noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
        TokenType:        tokenTypeCaller,
        RegisteredClaims: jwt.RegisteredClaims{Subject: "s", Issuer: "efipay-proxy"},
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)

    for name, token := range map[string]string{
        "garbage":      "not-a-token",
        "wrong key":    wrongKey,
        "wrong issuer": wrongIssuer,
        "wrong type":   wrongType,
        "alg none":     noneAlg,
    } {
        t.Run(name, func(t *testing.T) {
            _, err := svc.ValidateToken(token)
            require.ErrorIs(t, err, ErrInvalidToken)
        })
    }
}
