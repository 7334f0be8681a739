package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize composes s to NFC, collapses every run of whitespace (including
// newlines and non-breaking spaces) into one space and trims both ends.
// Entity decoding happens in the tokenizer before text reaches here.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return collapseSpaces(norm.NFC.String(s))
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
