// Package match implements the text matching core: normalization, feature
// composition, TF-IDF vectorization and cosine similarity extraction.
package match

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes attribute text for matching: lowercase, every
// non-alphanumeric character replaced with a space, whitespace runs
// collapsed, trimmed. Total and idempotent; empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// foilKeywords signal special printings in sell product names. Sell
// inventories carry no explicit foil flag, so these stand in for one.
var foilKeywords = []string{"foil", "borderless", "showcase", "extended art", "alternate art"}

// DetectFoil infers foil status from a product name. The name is normalized
// before keyword search so punctuation variants still match.
func DetectFoil(productName string) bool {
	name := Normalize(productName)
	for _, kw := range foilKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
