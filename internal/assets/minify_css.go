package assets

import "strings"

// MinifyCSS removes comments and insignificant whitespace. String literal
// contents are copied verbatim; comments are dropped entirely, including
// unterminated ones.
func MinifyCSS(source string) string {
	var out strings.Builder
	out.Grow(len(source))
	runes := []rune(source)
	n := len(runes)
	pos := 0
	var last rune

	write := func(c rune) {
		out.WriteRune(c)
		last = c
	}

	for pos < n {
		c := runes[pos]

		// comment
		if c == '/' && pos+1 < n && runes[pos+1] == '*' {
			pos += 2
			for pos+1 < n && !(runes[pos] == '*' && runes[pos+1] == '/') {
				pos++
			}
			if pos+1 < n {
				pos += 2
			} else {
				pos = n
			}
			continue
		}

		// string literal, backslash-escape aware
		if c == '"' || c == '\'' {
			quote := c
			write(quote)
			pos++
			for pos < n {
				if runes[pos] == '\\' && pos+1 < n {
					write(runes[pos])
					write(runes[pos+1])
					pos += 2
					continue
				}
				write(runes[pos])
				if runes[pos] == quote {
					pos++
					break
				}
				pos++
			}
			continue
		}

		// whitespace run: keep one space only when neither neighbor is
		// structural punctuation
		if isASCIIWhitespace(c) {
			for pos < n && isASCIIWhitespace(runes[pos]) {
				pos++
			}
			if out.Len() > 0 {
				var next rune = ' '
				if pos < n {
					next = runes[pos]
				}
				if !isCSSStructural(last) && !isCSSStructuralNext(next) {
					write(' ')
				}
			}
			continue
		}

		// drop a semicolon that directly precedes a closing brace
		if c == ';' && pos+1 < n {
			lookahead := pos + 1
			for lookahead < n && isASCIIWhitespace(runes[lookahead]) {
				lookahead++
			}
			if lookahead < n && runes[lookahead] == '}' {
				pos++
				continue
			}
		}

		write(c)
		pos++
	}

	return strings.TrimSpace(out.String())
}

func isASCIIWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isCSSStructural(c rune) bool {
	switch c {
	case '{', '}', ':', ';', ',':
		return true
	}
	return false
}

func isCSSStructuralNext(c rune) bool {
	switch c {
	case '{', '}', ';', ',':
		return true
	}
	return false
}
