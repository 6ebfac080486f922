package dataset

import (
	"regexp"
	"strings"
)

var plainDecimal = regexp.MustCompile(`^-?[0-9]+\.[0-9]+$`)

// formatLength drops trailing fractional zeros from plain decimal literals
// ("12.50" and "12.500000" both become "12.5"); anything else is returned as
// read, so large integers, leading zeros and free text are never altered.
func formatLength(raw string) string {
	raw = strings.TrimSpace(raw)
	if !plainDecimal.MatchString(raw) {
		return raw
	}
	raw = strings.TrimRight(raw, "0")
	return strings.TrimSuffix(raw, ".")
}
