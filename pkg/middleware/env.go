package middleware

import (
	"os"
	"strconv"
	"strings"
)

// Environment override helpers. Each is a no-op when name is empty, the
// variable is unset, or its value does not parse.

func envString(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envBool(name string, dst *bool) {
	var raw string
	envString(name, &raw)
	if b, err := strconv.ParseBool(raw); err == nil {
		*dst = b
	}
}

func envInt(name string, dst *int) {
	var raw string
	envString(name, &raw)
	if n, err := strconv.Atoi(raw); err == nil {
		*dst = n
	}
}

// envList splits a comma-separated value, dropping blank entries.
func envList(name string, dst *[]string) {
	var raw string
	envString(name, &raw)
	if raw == "" {
		return
	}

	items := make([]string, 0, strings.Count(raw, ",")+1)
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}
