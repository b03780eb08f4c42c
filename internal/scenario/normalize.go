package scenario

import (
	"strings"
	"unicode"
)

// RouteKey is an ordered (origin, destination) pair. Order matters: the
// reverse of a known pair is a different key.
type RouteKey struct {
	Origin      string
	Destination string
}

// StopKey lowercases a stop name and replaces each ASCII space with an
// underscore. Other whitespace such as tabs is kept, and runs are never
// trimmed or collapsed, so "  X" keeps two leading underscores and simply
// misses the table.
func StopKey(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' {
			return '_'
		}
		return unicode.ToLower(r)
	}, raw)
}

// PairKey lowercases origin and destination independently. No whitespace
// folding is applied.
func PairKey(origin, destination string) RouteKey {
	return RouteKey{
		Origin:      strings.ToLower(origin),
		Destination: strings.ToLower(destination),
	}
}

// DisplayName title-cases raw: the first letter of every run of letters is
// upper-cased and the rest lower-cased. "salford quays" becomes
// "Salford Quays" and "salford_quays" becomes "Salford_Quays".
func DisplayName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	inWord := false
	for _, r := range raw {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			inWord = true
			continue
		}
		inWord = false
		b.WriteRune(r)
	}
	return b.String()
}
