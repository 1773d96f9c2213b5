package utils

import (
    "time"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// FormatISO formats t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
    return t.UTC().Format(isoMillis)
}

func ExpiresIn(now time.Time, seconds int) time.Time {
    return now.Add(time.Duration(seconds) * time.Second)
}
