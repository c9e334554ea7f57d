package auth

import "strings"

// Canonicalize prefixes countryCode to mobile unless it is already there.
// Surrounding whitespace is dropped; an empty number stays empty.
func Canonicalize(countryCode, mobile string) string {
	m := strings.TrimSpace(mobile)
	if m == "" || strings.HasPrefix(m, countryCode) {
		return m
	}
	return countryCode + m
}
