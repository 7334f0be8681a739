package app

import (
	"path/filepath"
	"strings"
)

// outputExt is the extension of every written document.
const outputExt = ".pdf"

// deriveOutputPath returns where the PDF for input goes: next to the input,
// or under outDir when one is configured, with the input's base name and a
// .pdf extension. Paths are made absolute when possible so the confirmation
// line is unambiguous.
func deriveOutputPath(input, outDir string) string {
	dir := filepath.Dir(input)
	if strings.TrimSpace(outDir) != "" {
		dir = outDir
	}
	out := filepath.Join(dir, stem(input)+outputExt)
	if abs, err := filepath.Abs(out); err == nil {
		return abs
	}
	return out
}

// stem is the base name of path without its extension. A dotfile such as
// ".html" keeps its full name.
func stem(path string) string {
	base := filepath.Base(path)
	s := strings.TrimSuffix(base, filepath.Ext(base))
	if s == "" {
		return base
	}
	return s
}
