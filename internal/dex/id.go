package dex

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ToID reduces a display name to the server's id form: accents removed,
// case folded, and everything but letters and digits dropped.
// "Flabébé" becomes "flabebe", "Mr. Mime" becomes "mrmime".
func ToID(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = cases.Fold().String(stripped)

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeEffect strips an "ability: "/"move: "/"item: " qualifier,
// lowercases and drops spaces, dashes and apostrophes. It is the key
// shape of every alias table in this package.
func normalizeEffect(s string) string {
	s = stripEffectPrefix(strings.TrimSpace(s))
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\'', '’':
			return -1
		}
		return r
	}, s)
}

func stripEffectPrefix(s string) string {
	for _, prefix := range []string{"move: ", "ability: ", "item: "} {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			return s[len(prefix):]
		}
	}
	return s
}
