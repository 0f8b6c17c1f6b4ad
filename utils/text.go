package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Norm trims a variant field (size, color, note). The empty result means "absent".
func Norm(v string) string {
	return strings.TrimSpace(v)
}

// NormalizeText folds a string for substring search:
// lowercase, accents removed (NFD minus combining marks), trimmed.
// "Enfermería " -> "enfermeria"
func NormalizeText(v string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(v))
	if err != nil {
		// transform only fails on malformed input; fall back to the plain lowercase
		folded = strings.ToLower(v)
	}
	return strings.TrimSpace(folded)
}

// DigitsOnly strips everything that is not an ASCII digit ("+57 300 123" -> "57300123")
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
