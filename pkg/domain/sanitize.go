package domain

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxPropSize caps a single string prop value, in bytes.
	DefaultMaxPropSize = 4096
	// EnvMaxPropSize overrides DefaultMaxPropSize.
	EnvMaxPropSize = "LATTICE_MAX_PROP_SIZE"
)

// SanitizeString enforces the prop size limit, rejects invalid UTF-8 and strips
// control characters other than newline, tab and carriage return.
// Oversized values are rejected rather than truncated.
func SanitizeString(s string) (string, error) {
	if limit := maxPropSize(); len(s) > limit {
		return "", fmt.Errorf("%w: value of %d bytes exceeds limit %d", ErrInvalidProps, len(s), limit)
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrInvalidProps)
	}

	clean := true
	for _, r := range s {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// sanitizeValues checks that every value is a scalar and returns a copy with
// string values sanitized.
func sanitizeValues(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for key, value := range m {
		if !isScalar(value) {
			return nil, fmt.Errorf("%w: %q must be a string, number or boolean", ErrInvalidProps, key)
		}
		if s, ok := value.(string); ok {
			clean, err := SanitizeString(s)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", key, err)
			}
			value = clean
		}
		out[key] = value
	}
	return out, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxPropSize() int {
	if val := os.Getenv(EnvMaxPropSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxPropSize
}
