package assets

import "strings"

// verbatimElements must keep their text content byte-exact.
var verbatimElements = map[string]bool{
	"pre":      true,
	"code":     true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// MinifyHTML collapses insignificant whitespace in text content. Tags are
// copied byte-for-byte, so attribute quoting is preserved exactly, and the
// content of verbatim elements (pre, code, textarea, script, style) is never
// touched. HTML comments are dropped unless they open with a conditional
// marker.
func MinifyHTML(source string) string {
	var out strings.Builder
	out.Grow(len(source))

	verbatimDepth := 0
	pos := 0
	n := len(source)

	for pos < n {
		open := strings.IndexByte(source[pos:], '<')
		if open < 0 {
			out.WriteString(collapseText(source[pos:], verbatimDepth > 0))
			break
		}
		open += pos

		out.WriteString(collapseText(source[pos:open], verbatimDepth > 0))

		// comment
		if strings.HasPrefix(source[open:], "<!--") {
			end := strings.Index(source[open+4:], "-->")
			if end < 0 {
				out.WriteString(source[open:])
				break
			}
			comment := source[open : open+4+end+3]
			if strings.HasPrefix(comment, "<!--[if") {
				out.WriteString(comment)
			}
			pos = open + 4 + end + 3
			continue
		}

		close := findTagEnd(source, open)
		if close < 0 {
			out.WriteString(source[open:])
			break
		}
		tag := source[open : close+1]
		out.WriteString(tag)
		pos = close + 1

		name, isClosing := tagName(tag)
		if verbatimElements[name] {
			if isClosing {
				if verbatimDepth > 0 {
					verbatimDepth--
				}
			} else if !strings.HasSuffix(tag, "/>") {
				verbatimDepth++
				// script/style content may contain "<" that is not markup;
				// copy through to the matching close tag verbatim
				if name == "script" || name == "style" {
					closing := "</" + name
					end := strings.Index(strings.ToLower(source[pos:]), closing)
					if end < 0 {
						out.WriteString(source[pos:])
						pos = n
						verbatimDepth--
						continue
					}
					out.WriteString(source[pos : pos+end])
					pos += end
					verbatimDepth--
				}
			}
		}
	}

	return out.String()
}

// collapseText reduces whitespace runs to a single space. Runs that span the
// whole segment between two tags collapse to nothing.
func collapseText(text string, verbatim bool) string {
	if verbatim || text == "" {
		return text
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var out strings.Builder
	out.Grow(len(text))
	inSpace := false
	for _, c := range text {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			inSpace = true
			continue
		}
		if inSpace {
			out.WriteByte(' ')
			inSpace = false
		}
		out.WriteRune(c)
	}
	if inSpace {
		out.WriteByte(' ')
	}
	return out.String()
}

// findTagEnd locates the '>' closing the tag starting at open, skipping
// quoted attribute values.
func findTagEnd(source string, open int) int {
	var quote byte
	for i := open + 1; i < len(source); i++ {
		c := source[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			return i
		}
	}
	return -1
}

func tagName(tag string) (name string, closing bool) {
	inner := strings.TrimPrefix(strings.TrimSuffix(tag, ">"), "<")
	if strings.HasPrefix(inner, "/") {
		closing = true
		inner = inner[1:]
	}
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '/' {
			inner = inner[:i]
			break
		}
	}
	return strings.ToLower(inner), closing
}
