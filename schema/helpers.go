package schema

import (
	"strings"
	"unicode"
)

// trimNamePart strips surrounding punctuation from one part of a person's name.
func trimNamePart(p string) string {
	cp := strings.TrimFunc(p, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\''
	})
	return strings.TrimSuffix(cp, ".")
}

// AbbreviateRep formats "Sarah Chen" to "Sarah C" for narrow tables.
// Single-word names and the UnknownRep placeholder are returned unchanged.
func AbbreviateRep(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return UnknownRep
	}

	var parts []string
	for p := range strings.FieldsSeq(trimmed) {
		if cp := trimNamePart(p); cp != "" {
			parts = append(parts, cp)
		}
	}
	if len(parts) < 2 {
		return trimmed
	}

	last := []rune(parts[len(parts)-1])
	return parts[0] + " " + string(last[0])
}

// Plural returns singular when n is 1 and plural otherwise.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
