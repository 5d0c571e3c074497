// Package utils holds small helpers shared across the service: retry loops,
// duration parsing and Unix-millisecond time conversions.
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration extends time.ParseDuration with bare integers (seconds),
// days ("2d") and weeks ("1w").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	var n int
	if c, err := fmt.Sscanf(s, "%dd", &n); err == nil && c == 1 {
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if c, err := fmt.Sscanf(s, "%dw", &n); err == nil && c == 1 {
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	}

	return 0, fmt.Errorf("invalid duration: %q", s)
}

// FromMillis converts Unix milliseconds to a time in loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc)
}

// FormatMillis renders Unix milliseconds with layout in loc. Zero renders as "".
func FormatMillis(ms int64, layout string, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return FromMillis(ms, loc).Format(layout)
}

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
