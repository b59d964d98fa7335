package itemkey

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a raw item identifier (UPC, EAN, custom SKU,
// manufacturer SKU, or internal system id) into one comparable key.
//
// Rules:
//   - all whitespace is removed, wherever it appears
//   - letters are uppercased
//   - leading zeros are preserved (digit-only codes stay distinct from their
//     trimmed forms; "0123" and "123" are different items)
//   - an empty or whitespace-only input yields the empty string, never a
//     sentinel value
//
// Two scans of "the same" identifier must normalize to the same key, so all
// core components key items by the result of Normalize, never by raw input.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
