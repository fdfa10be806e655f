// text/fold.go
package text

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChains pools NFD → strip combining marks (Mn) → NFC pipelines;
// transformers are stateful and can't be shared.
var foldChains = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		)
	},
}

// Fold trims, lowercases, and strips combining diacritics. It is the
// comparison key for email lookups, so "José@Example.com " and
// "jose@example.com" fold to the same value. Letters without a
// decomposition ("ø", "ß") are left alone.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || isASCIILower(s) {
		return s
	}

	s = strings.ToLower(s)

	t := foldChains.Get().(transform.Transformer)
	defer func() {
		t.Reset()
		foldChains.Put(t)
	}()

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCIILower(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 0x80 || (b >= 'A' && b <= 'Z') {
			return false
		}
	}
	return true
}
