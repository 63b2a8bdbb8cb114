// Package normalize provides text cleanup helpers for merchant names and
// masked account numbers extracted from bank notifications.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// locationSuffix matches a trailing country/region code after a comma,
// e.g. "REDWAVE MEGAMALL, MV" or "AGORA CENTRAL ,MVD".
var locationSuffix = regexp.MustCompile(`\s*,\s*[A-Z]{2,3}\.?$`)

// whitespaceRun collapses interior whitespace runs to a single space.
var whitespaceRun = regexp.MustCompile(`\s+`)

// trailingDigits matches the trailing digit run of a masked account number.
var trailingDigits = regexp.MustCompile(`(\d+)$`)

// CleanMerchant normalizes a raw merchant capture: strips combining unicode
// marks (accented characters fold to ASCII), collapses whitespace, removes a
// trailing location suffix and trailing punctuation.
// Examples: "CAFÉ AROMA, MV" -> "CAFE AROMA", "AGORA  CENTRAL." -> "AGORA CENTRAL"
func CleanMerchant(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	cleaned, _, err := transform.String(t, raw)
	if err != nil {
		// Normalization failure is not worth losing the merchant over;
		// fall back to the raw capture.
		cleaned = raw
	}

	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = locationSuffix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimRight(cleaned, ".,;: ")

	return cleaned
}

// FragmentFromMask derives the account fragment from a long-form masked
// account number by taking its trailing digit run.
// Examples: "7730***00123" -> "00123", "1621" -> "1621", "****" -> ""
func FragmentFromMask(mask string) string {
	m := trailingDigits.FindStringSubmatch(mask)
	if m == nil {
		return ""
	}
	return m[1]
}
