package chunker

import "strings"

// lineKind classifies a single line of markdown for the scanners in this package.
type lineKind int

const (
	lineContent lineKind = iota
	lineBlank
	lineTitle   // "# Title"
	lineSection // "## Section"
)

// classify reports what kind of line s is.
// Headers must start at column 0: a marker, then a space or tab.
func classify(s string) lineKind {
	if strings.TrimSpace(s) == "" {
		return lineBlank
	}
	switch {
	case hasMarker(s, "## ") || hasMarker(s, "##\t"):
		if strings.TrimSpace(s[3:]) != "" {
			return lineSection
		}
	case hasMarker(s, "# ") || hasMarker(s, "#\t"):
		return lineTitle
	}
	return lineContent
}

func hasMarker(s, marker string) bool {
	return strings.HasPrefix(s, marker)
}
