// Package formatting converts byte sizes between int64 counts and the
// human-readable form used in configuration ("25MB", "1.5 GB").
package formatting

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const unitStep = 1024

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n in the largest base-1024 unit that keeps the value
// at or above 1, with precision decimal places. Negative precision is treated as 0.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for size >= unitStep && i < len(units)-1 {
		size /= unitStep
		i++
	}

	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes reads a non-negative size such as "2048", "512B", "25 MB" or
// "1.5mb". Units are base-1024 and case-insensitive; no unit means bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	exp := 0
	if unit != "" {
		if exp = slices.Index(units, strings.ToUpper(unit)); exp < 0 {
			return 0, fmt.Errorf("unknown byte size unit %q", unit)
		}
	}

	for range exp {
		value *= unitStep
	}
	return int64(value), nil
}
