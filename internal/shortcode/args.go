package shortcode

import (
	"fmt"
	"strings"
	"unicode"
)

// parseArgs tokenizes the inner text of a directive tag into its name and
// arguments. Values must be double-quoted; a backslash escapes the quote and
// the backslash itself. A bare quoted string with no key is stored as the
// positional argument.
func parseArgs(input string) (string, map[string]string, error) {
	args := map[string]string{}
	runes := []rune(strings.TrimSpace(input))
	pos := 0

	name := readIdent(runes, &pos)
	if name == "" {
		return "", nil, fmt.Errorf("directive name is empty")
	}

	for {
		skipSpace(runes, &pos)
		if pos >= len(runes) {
			break
		}

		if runes[pos] == '"' {
			pos++
			value, err := readQuoted(runes, &pos)
			if err != nil {
				return "", nil, fmt.Errorf("in %q: %w", name, err)
			}
			args[positionalKey] = value
			continue
		}

		key := readIdent(runes, &pos)
		if key == "" {
			return "", nil, fmt.Errorf("expected argument key in %q", name)
		}
		skipSpace(runes, &pos)
		if pos >= len(runes) || runes[pos] != '=' {
			return "", nil, fmt.Errorf("expected '=' after key %q in %q", key, name)
		}
		pos++
		skipSpace(runes, &pos)
		if pos >= len(runes) || runes[pos] != '"' {
			return "", nil, fmt.Errorf("expected quoted value for key %q in %q", key, name)
		}
		pos++
		value, err := readQuoted(runes, &pos)
		if err != nil {
			return "", nil, fmt.Errorf("for key %q in %q: %w", key, name, err)
		}
		args[key] = value
	}

	return name, args, nil
}

func readIdent(runes []rune, pos *int) string {
	start := *pos
	for *pos < len(runes) {
		c := runes[*pos]
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' {
			*pos++
			continue
		}
		break
	}
	return string(runes[start:*pos])
}

// readQuoted consumes up to and including the closing quote. The opening
// quote has already been consumed.
func readQuoted(runes []rune, pos *int) (string, error) {
	var b strings.Builder
	for *pos < len(runes) {
		c := runes[*pos]
		*pos++
		if c == '\\' && *pos < len(runes) {
			b.WriteRune(runes[*pos])
			*pos++
			continue
		}
		if c == '"' {
			return b.String(), nil
		}
		b.WriteRune(c)
	}
	return "", fmt.Errorf("unclosed string value")
}

func skipSpace(runes []rune, pos *int) {
	for *pos < len(runes) && unicode.IsSpace(runes[*pos]) {
		*pos++
	}
}
