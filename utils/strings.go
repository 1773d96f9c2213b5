package utils

import (
    "strings"
    "unicode"
)

// DigitsOnly strips every character that is not an ASCII digit.
func DigitsOnly(s string) string {
    var b strings.Builder
    b.Grow(len(s))
    for _, r := range s {
        if r >= '0' && r <= '9' {
            b.WriteRune(r)
        }
    }
    return b.String()
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
    if max <= 0 {
        return ""
    }
    runes := []rune(s)
    if len(runes) <= max {
        return s
    }
    return string(runes[:max])
}

// MaskCPF keeps only the last two digits, for logs.
func MaskCPF(cpf string) string {
    if len(cpf) <= 2 {
        return strings.Repeat("*", len(cpf))
    }
    return strings.Repeat("*", len(cpf)-2) + cpf[len(cpf)-2:]
}

// SplitList splits a comma separated setting, dropping blanks.
func SplitList(value string) []string {
    var out []string
    for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '\n' }) {
        part = strings.TrimFunc(part, unicode.IsSpace)
        if part != "" {
            out = append(out, part)
        }
    }
    return out
}
