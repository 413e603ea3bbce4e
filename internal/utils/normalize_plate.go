package utils

import "strings"

// NormalizePlate brings a raw plate reading to canonical form: whitespace and
// dashes removed, uppercased.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
