package utils

import (
    "crypto/hmac"
    "crypto/rand"
    "crypto/sha256"
    "encoding/base64"
    "encoding/hex"
    "math/big"
    "strings"
)

const lowerAlnum = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSuffix returns a lowercase alphanumeric string, used for txids.
func GenerateSuffix(length int) string {
    return randomFrom(lowerAlnum, length)
}

func randomFrom(charset string, length int) string {
    result := make([]byte, length)
    for i := range result {
        n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
        result[i] = charset[n.Int64()]
    }
    return string(result)
}

func EncodeString(input string) string {
    return base64.StdEncoding.EncodeToString([]byte(input))
}

// BasicAuth builds the value of an Authorization: Basic header.
func BasicAuth(user, password string) string {
    return "Basic " + EncodeString(user+":"+password)
}

// SignHMAC returns the hex encoded HMAC-SHA256 of body.
func SignHMAC(secret, body []byte) string {
    mac := hmac.New(sha256.New, secret)
    mac.Write(body)
    return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC compares signature against the HMAC of body in constant time.
// The signature may carry a "sha256=" prefix.
func VerifyHMAC(secret, body []byte, signature string) bool {
    signature = strings.TrimSpace(signature)
    signature = strings.TrimPrefix(signature, "sha256=")
    got, err := hex.DecodeString(strings.ToLower(signature))
    if err != nil || len(got) == 0 {
        return false
    }
    mac := hmac.New(sha256.New, secret)
    mac.Write(body)
    return hmac.Equal(got, mac.Sum(nil))
}

// SecretEqual compares two shared secrets in constant time.
func SecretEqual(a, b string) bool {
    return hmac.Equal([]byte(a), []byte(b))
}
