package render

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// textEncoder converts normalized UTF-8 text into the byte form the active
// font expects.
type textEncoder func(string) string

// cp1252 maps text onto the Windows-1252 code page used by the core PDF
// fonts. Runes outside it become '?'.
func cp1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

func passthrough(s string) string { return s }
