package utils

import (
    "fmt"
    "math/big"
    "strings"
)

// FormatAmount renders a decimal amount with exactly two fraction digits,
// rounding half away from zero on the exact decimal text ("10.005" -> "10.01").
func FormatAmount(decimal string) (string, error) {
    decimal = strings.TrimSpace(decimal)
    r, ok := new(big.Rat).SetString(decimal)
    if !ok {
        return "", fmt.Errorf("invalid amount: %q", decimal)
    }

    cents := new(big.Rat).Mul(r, big.NewRat(100, 1))
    negative := cents.Sign() < 0
    cents.Abs(cents)
    cents.Add(cents, big.NewRat(1, 2))

    // parte inteira de cents + 0.5
    q := new(big.Int).Quo(cents.Num(), cents.Denom())

    whole := new(big.Int)
    frac := new(big.Int)
    whole.QuoRem(q, big.NewInt(100), frac)

    sign := ""
    if negative && q.Sign() != 0 {
        sign = "-"
    }
    return fmt.Sprintf("%s%s.%02d", sign, whole.String(), frac.Int64()), nil
}
