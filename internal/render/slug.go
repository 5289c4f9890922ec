package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugFolder strips combining marks so accented letters fold to their base
// form ("Crème" -> "Creme") before ASCII reduction.
var slugFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Slugify reduces text to a lowercase hyphen-separated identifier. The
// function is idempotent: slugifying a slug returns it unchanged.
func Slugify(text string) string {
	folded, _, err := transform.String(slugFolder, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress leading hyphens
	for _, c := range strings.ToLower(folded) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
