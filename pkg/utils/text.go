package utils

import "strings"

// Digits strips every non-digit rune from a string. Used to normalize
// postal codes and phone numbers before length checks.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
