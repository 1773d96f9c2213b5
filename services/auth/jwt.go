package auth

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "efipay-proxy/models"
)

const (
    CallerTokenDuration = 24 * time.Hour // token de sistema chamador expira em 24 horas
    MaxTokenDuration    = 30 * 24 * time.Hour
    tokenTypeCaller     = "caller"
)

var (
    ErrTokenExpired   = errors.New("token expired")
    ErrInvalidToken   = errors.New("invalid token")
    ErrMissingSubject = errors.New("subject is required")
)

// JWTService mints and checks the tokens that systems present to the proxy.
type JWTService struct {
    secretKey []byte
    issuer    string
    now       func() time.Time
}

type Claims struct {
    Name      string `json:"name,omitempty"`
    Scope     string `json:"scope,omitempty"`
    TokenType string `json:"token_type"`
    jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string) *JWTService {
    return &JWTService{
        secretKey: []byte(secretKey),
        issuer:    issuer,
        now:       time.Now,
    }
}

// GenerateToken gera um token JWT para o sistema chamador
func (j *JWTService) GenerateToken(caller models.Caller, duration time.Duration) (string, time.Time, error) {
    if strings.TrimSpace(caller.Subject) == "" {
        return "", time.Time{}, ErrMissingSubject
    }
    if duration <= 0 {
        duration = CallerTokenDuration
    }
    if duration > MaxTokenDuration {
        duration = MaxTokenDuration
    }

    now := j.now()
    expiresAt := now.Add(duration)
    claims := Claims{
        Name:      caller.Name,
        Scope:     caller.Scope,
        TokenType: tokenTypeCaller,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   caller.Subject,
            Issuer:    j.issuer,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(expiresAt),
            NotBefore: jwt.NewNumericDate(now),
        },
    }

    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := token.SignedString(j.secretKey)
    if err != nil {
        return "", time.Time{}, fmt.Errorf("error signing token: %v", err)
    }
    return signed, expiresAt, nil
}

// ValidateToken valida um token JWT e retorna o sistema chamador
func (j *JWTService) ValidateToken(tokenString string) (*models.Caller, error) {
    token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
        if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
        }
        return j.secretKey, nil
    }, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(j.now))

    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrInvalidToken
    }

    claims, ok := token.Claims.(*Claims)
    if !ok || !token.Valid {
        return nil, ErrInvalidToken
    }

    if claims.TokenType != tokenTypeCaller || claims.Subject == "" {
        return nil, ErrInvalidToken
    }

    return &models.Caller{
        Subject: claims.Subject,
        Name:    claims.Name,
        Scope:   claims.Scope,
    }, nil
}
