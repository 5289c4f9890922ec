package render

import (
	"strings"

	"golang.org/x/net/html"
)

// WordsPerMinute is the fixed reading-speed constant for reading time.
const WordsPerMinute = 220

// excerptMaxChars caps an auto-generated excerpt. The cut falls on the last
// space before the cap and an ellipsis is appended.
const excerptMaxChars = 200

// StripTags removes all HTML markup, returning visible text only. Script and
// style element contents are dropped entirely.
func StripTags(fragment string) string {
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// CountWords splits visible text on whitespace.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns minutes rounded up, minimum 1 for non-empty content.
func ReadingTime(words int) int {
	if words == 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// markdownPunct is stripped from excerpt text so emphasis and link syntax
// does not leak into summaries.
const markdownPunct = "#*_`[]()"

// Excerpt derives a summary from a raw markdown body: the first paragraph,
// markdown punctuation removed, truncated at the last space before the
// 200-character cap with an appended ellipsis. Returns "" for empty bodies.
func Excerpt(markdown string) string {
	trimmed := strings.TrimSpace(markdown)
	if trimmed == "" {
		return ""
	}

	first, _, _ := strings.Cut(trimmed, "\n\n")
	var b strings.Builder
	b.Grow(len(first))
	for _, c := range strings.TrimSpace(first) {
		if !strings.ContainsRune(markdownPunct, c) {
			b.WriteRune(c)
		}
	}
	text := strings.TrimSpace(b.String())

	runes := []rune(text)
	if len(runes) <= excerptMaxChars {
		return text
	}
	truncated := string(runes[:excerptMaxChars])
	if cut := strings.LastIndexByte(truncated, ' '); cut > 0 {
		truncated = truncated[:cut]
	}
	return truncated + "..."
}
