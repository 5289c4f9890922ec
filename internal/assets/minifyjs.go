package assets

import "strings"

// Tokens that can directly precede a regex literal. After any of these a
// slash starts a regex, not a division.
var regexKeywords = []string{
	"return", "typeof", "instanceof", "in", "delete", "void",
	"throw", "new", "case", "yield", "await",
}

// MinifyJS strips comments and collapses whitespace while tokenizing enough
// of the language to keep string literals, template literals (including
// interpolation bodies), and regex literals intact. The regex-vs-division
// ambiguity is resolved by the preceding significant token.
func MinifyJS(source string) string {
	m := &jsMinifier{runes: []rune(source)}
	m.out.Grow(len(source))
	m.run()
	return strings.TrimSpace(m.out.String())
}

type jsMinifier struct {
	runes []rune
	pos   int
	out   strings.Builder
}

func (m *jsMinifier) run() {
	for m.pos < len(m.runes) {
		c := m.runes[m.pos]
		switch {
		case c == '"' || c == '\'':
			m.copyString(c)
		case c == '`':
			m.copyTemplate()
		case c == '/' && m.peek(1) == '/':
			m.skipLineComment()
		case c == '/' && m.peek(1) == '*':
			m.skipBlockComment()
		case c == '/' && m.regexAllowed():
			m.copyRegex()
		case isASCIIWhitespace(c):
			m.collapseWhitespace()
		default:
			m.out.WriteRune(c)
			m.pos++
		}
	}
}

func (m *jsMinifier) peek(offset int) rune {
	if m.pos+offset < len(m.runes) {
		return m.runes[m.pos+offset]
	}
	return 0
}

// copyString copies a quoted literal verbatim, honoring backslash escapes.
func (m *jsMinifier) copyString(quote rune) {
	m.out.WriteRune(quote)
	m.pos++
	for m.pos < len(m.runes) {
		c := m.runes[m.pos]
		if c == '\\' && m.pos+1 < len(m.runes) {
			m.out.WriteRune(c)
			m.out.WriteRune(m.runes[m.pos+1])
			m.pos += 2
			continue
		}
		m.out.WriteRune(c)
		m.pos++
		if c == quote {
			return
		}
	}
}

// copyTemplate copies a template literal. Interpolation bodies `${...}`
// are copied verbatim with brace-depth tracking, including nested strings.
func (m *jsMinifier) copyTemplate() {
	m.out.WriteRune('`')
	m.pos++
	for m.pos < len(m.runes) {
		c := m.runes[m.pos]
		if c == '\\' && m.pos+1 < len(m.runes) {
			m.out.WriteRune(c)
			m.out.WriteRune(m.runes[m.pos+1])
			m.pos += 2
			continue
		}
		if c == '$' && m.peek(1) == '{' {
			m.out.WriteString("${")
			m.pos += 2
			m.copyInterpolation()
			continue
		}
		m.out.WriteRune(c)
		m.pos++
		if c == '`' {
			return
		}
	}
}

func (m *jsMinifier) copyInterpolation() {
	depth := 1
	for m.pos < len(m.runes) && depth > 0 {
		c := m.runes[m.pos]
		switch {
		case c == '\\' && m.pos+1 < len(m.runes):
			m.out.WriteRune(c)
			m.out.WriteRune(m.runes[m.pos+1])
			m.pos += 2
		case c == '"' || c == '\'':
			m.copyString(c)
		case c == '{':
			depth++
			m.out.WriteRune(c)
			m.pos++
		case c == '}':
			depth--
			m.out.WriteRune(c)
			m.pos++
		default:
			m.out.WriteRune(c)
			m.pos++
		}
	}
}

// copyRegex copies a regex literal including character classes and flags.
func (m *jsMinifier) copyRegex() {
	m.out.WriteRune('/')
	m.pos++
	for m.pos < len(m.runes) {
		c := m.runes[m.pos]
		if c == '\\' && m.pos+1 < len(m.runes) {
			m.out.WriteRune(c)
			m.out.WriteRune(m.runes[m.pos+1])
			m.pos += 2
			continue
		}
		if c == '[' {
			m.out.WriteRune(c)
			m.pos++
			for m.pos < len(m.runes) && m.runes[m.pos] != ']' {
				if m.runes[m.pos] == '\\' && m.pos+1 < len(m.runes) {
					m.out.WriteRune(m.runes[m.pos])
					m.out.WriteRune(m.runes[m.pos+1])
					m.pos += 2
					continue
				}
				m.out.WriteRune(m.runes[m.pos])
				m.pos++
			}
			if m.pos < len(m.runes) {
				m.out.WriteRune(']')
				m.pos++
			}
			continue
		}
		if c == '/' {
			m.out.WriteRune('/')
			m.pos++
			for m.pos < len(m.runes) && isASCIIAlphanumeric(m.runes[m.pos]) {
				m.out.WriteRune(m.runes[m.pos])
				m.pos++
			}
			return
		}
		m.out.WriteRune(c)
		m.pos++
	}
}

func (m *jsMinifier) skipLineComment() {
	m.pos += 2
	for m.pos < len(m.runes) && m.runes[m.pos] != '\n' {
		m.pos++
	}
	if m.pos < len(m.runes) {
		m.out.WriteRune('\n')
		m.pos++
	}
}

func (m *jsMinifier) skipBlockComment() {
	m.pos += 2
	for m.pos+1 < len(m.runes) {
		if m.runes[m.pos] == '*' && m.runes[m.pos+1] == '/' {
			m.pos += 2
			return
		}
		m.pos++
	}
	m.pos = len(m.runes)
}

// collapseWhitespace reduces a whitespace run to a single newline if the run
// contained one (preserving ASI behavior) or a single space otherwise.
func (m *jsMinifier) collapseWhitespace() {
	sawNewline := false
	for m.pos < len(m.runes) && isASCIIWhitespace(m.runes[m.pos]) {
		if m.runes[m.pos] == '\n' || m.runes[m.pos] == '\r' {
			sawNewline = true
		}
		m.pos++
	}
	if m.out.Len() == 0 {
		return
	}
	s := m.out.String()
	last := s[len(s)-1]
	if last != ' ' && last != '\n' {
		if sawNewline {
			m.out.WriteByte('\n')
		} else {
			m.out.WriteByte(' ')
		}
	}
}

// regexAllowed reports whether a slash at the current position starts a
// regex literal, judged by the last significant output character or keyword.
func (m *jsMinifier) regexAllowed() bool {
	s := strings.TrimRight(m.out.String(), " \t\n\r")
	if s == "" {
		return true
	}
	switch s[len(s)-1] {
	case '=', '(', '[', '!', '&', '|', '?', '{', '}', ';', ',', '~', '^', ':', '<', '>', '+', '-', '*', '%':
		return true
	}
	for _, keyword := range regexKeywords {
		if strings.HasSuffix(s, keyword) {
			before := s[:len(s)-len(keyword)]
			if before == "" || !isIdentRune(rune(before[len(before)-1])) {
				return true
			}
		}
	}
	return false
}

func isASCIIAlphanumeric(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdentRune(c rune) bool {
	return isASCIIAlphanumeric(c) || c == '_' || c == '$'
}
