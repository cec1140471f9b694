// Package formatting reads the loosely formatted text saldo accepts from
// configuration files and vision oracle replies.
package formatting

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSize is returned when a size string cannot be read.
var ErrInvalidSize = errors.New("invalid size")

// sizeShift maps a unit to its base-1024 exponent. Decimal-looking
// units ("MB") are read as binary, matching how upload limits are written
// in config files.
var sizeShift = map[string]uint{
	"": 0, "b": 0,
	"k": 10, "kb": 10, "kib": 10,
	"m": 20, "mb": 20, "mib": 20,
	"g": 30, "gb": 30, "gib": 30,
	"t": 40, "tb": 40, "tib": 40,
}

var sizePattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]*)$`)

// ParseBytes reads a size such as "50MB", "1.5 GiB" or "4096" into a byte
// count. Fractional results are truncated.
func ParseBytes(s string) (int64, error) {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	shift, ok := sizeShift[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidSize, m[2])
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}
	return int64(value * float64(int64(1)<<shift)), nil
}
