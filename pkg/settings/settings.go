// Package settings holds the field-level rules every saldo config section
// follows: a TOML overlay replaces set fields, SALDO_* environment
// variables replace those, and defaults fill whatever is still unset.
package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Merge replaces *dst with overlay when overlay is set.
func Merge[T comparable](dst *T, overlay T) {
	var zero T
	if overlay != zero {
		*dst = overlay
	}
}

// Default fills *dst with def when it is unset.
func Default[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}

// Env replaces *dst with the value of the environment variable key. An
// empty key or an unset variable leaves *dst alone.
func Env(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// EnvInt is Env for integer fields. A value that does not parse is
// ignored, so a typo never zeroes a configured limit.
func EnvInt[T ~int | ~int32 | ~int64](dst *T, key string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*dst = T(n)
	}
}

// EnvBool is Env for boolean fields, accepting the strconv.ParseBool forms.
func EnvBool(dst *bool, key string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

// EnvList is Env for comma separated lists. Blank items are dropped.
func EnvList(dst *[]string, key string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	var items []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

// Duration parses a duration field and names the field in the error.
func Duration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}

func lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v := os.Getenv(key)
	return v, v != ""
}
