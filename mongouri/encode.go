// mongouri/encode.go
package mongouri

import (
	"net/url"
	"strings"
)

// reservedSet holds the characters that break a connection string when they
// appear unencoded in a username or password.
const reservedSet = "@#/:?=&+% "

// ReservedChar pairs a reserved character with its percent-encoding.
type ReservedChar struct {
	Char    string
	Encoded string
}

// Label is the character as shown to operators ("space" for " ").
func (r ReservedChar) Label() string {
	if r.Char == " " {
		return "space"
	}
	return r.Char
}

// ReservedCharacters lists the reserved characters in display order.
func ReservedCharacters() []ReservedChar {
	out := make([]ReservedChar, 0, len(reservedSet))
	for _, c := range reservedSet {
		s := string(c)
		out = append(out, ReservedChar{Char: s, Encoded: EncodeSecret(s)})
	}
	return out
}

// EncodingHint renders the reserved table on one line, e.g. "@ → %40, # → %23, ...".
func EncodingHint() string {
	chars := ReservedCharacters()
	parts := make([]string, 0, len(chars))
	for _, rc := range chars {
		parts = append(parts, rc.Label()+" → "+rc.Encoded)
	}
	return strings.Join(parts, ", ")
}

// NeedsEncoding reports whether s contains any reserved character.
func NeedsEncoding(s string) bool {
	return strings.ContainsAny(s, reservedSet)
}

// ReservedIn returns the distinct reserved characters of s in order of first
// appearance.
func ReservedIn(s string) []ReservedChar {
	var out []ReservedChar
	seen := map[rune]bool{}
	for _, c := range s {
		if seen[c] || !strings.ContainsRune(reservedSet, c) {
			continue
		}
		seen[c] = true
		out = append(out, ReservedChar{Char: string(c), Encoded: EncodeSecret(string(c))})
	}
	return out
}

// EncodeSecret percent-encodes raw for use as a URI userinfo component.
// Everything except A-Z a-z 0-9 - _ . ~ is escaped, and a space becomes %20
// (not "+"), so url.PathUnescape is its exact inverse.
func EncodeSecret(raw string) string {
	return strings.ReplaceAll(url.QueryEscape(raw), "+", "%20")
}
