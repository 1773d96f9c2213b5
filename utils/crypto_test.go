package utils

import (
    "regexp"
    "testing"

    "github.com/stretchr/testify/require"
)

func TestBasicAuth(t *testing.T) {
    require.Equal(t, "Basic aWQ6c2VjcmV0", BasicAuth("id", "secret"))
}

func TestVerifyHMAC(t *testing.T) {
    secret := []byte("webhook-secret")
    body := []byte(`{"pix":[{"txid":"abc","valor":"10.00"}]}`)
    sig := SignHMAC(secret, body)

    require.True(t, VerifyHMAC(secret, body, sig))
    require.True(t, VerifyHMAC(secret, body, "sha256="+sig))
    require.False(t, VerifyHMAC([]byte("other"), body, sig))
    require.False(t, VerifyHMAC(secret, body, ""))
    require.False(t, VerifyHMAC(secret, body, "not-hex"))
}

func TestGenerateSuffix(t *testing.T) {
    re := regexp.MustCompile(`^[0-9a-z]{6}$`)
    for i := 0; i < 50; i++ {
        require.Regexp(t, re, GenerateSuffix(6))
    }
}
