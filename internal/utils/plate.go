package utils

import (
	"strings"
	"unicode"
)

// NormalizePlate strips all whitespace from a license plate and
// upper-cases it, so "1ab 2345" and "1AB2345" compare equal.
func NormalizePlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range plate {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
