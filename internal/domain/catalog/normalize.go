package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText strips diacritics and uppercases, so "Cápsula" and "CAPSULA"
// compare equal.
func NormalizeText(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToUpper(stripped)
}

// NormalizeItemName normalizes a product name for storage: diacritics
// stripped, uppercased, and restricted to letters, digits, space, comma,
// period, colon, parentheses and hyphen.
func NormalizeItemName(s string) string {
	clean := NormalizeText(s)
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == ',', r == '.', r == ':', r == '(', r == ')', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
