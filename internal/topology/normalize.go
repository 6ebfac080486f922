package topology

import "strings"

// NormalizeID trims raw and reports whether it names a real endpoint.
// Empty strings and the spreadsheet placeholders "nan" and "none" are absent.
func NormalizeID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if IsPlaceholder(id) {
		return "", false
	}
	return id, true
}

// IsPlaceholder reports whether a trimmed cell value stands for "no value".
func IsPlaceholder(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "none":
		return true
	}
	return false
}
