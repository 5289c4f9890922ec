package feeds

import "strings"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape escapes the five XML special characters.
func Escape(s string) string {
	return xmlEscaper.Replace(s)
}
