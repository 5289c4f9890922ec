package content

import (
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// HeaderFormat identifies the frontmatter block style.
type HeaderFormat int

const (
	HeaderNone HeaderFormat = iota
	HeaderTOML              // +++ delimited
	HeaderYAML              // --- delimited
)

const (
	tomlDelimiter = "+++"
	yamlDelimiter = "---"
)

// SplitFrontmatter separates the metadata header from the body. The header
// must start at the very first byte of the file. The closing delimiter is
// only recognized on a line where no quoted value is still open, so a
// `---` or `+++` sequence inside a multi-line quoted string does not
// terminate the header early.
func SplitFrontmatter(source, path string) (format HeaderFormat, header, body string, err error) {
	source = strings.ReplaceAll(source, "\r\n", "\n")

	var delim string
	switch {
	case strings.HasPrefix(source, tomlDelimiter+"\n"):
		format, delim = HeaderTOML, tomlDelimiter
	case strings.HasPrefix(source, yamlDelimiter+"\n"):
		format, delim = HeaderYAML, yamlDelimiter
	default:
		return HeaderNone, "", source, nil
	}

	rest := source[len(delim)+1:]
	var state quoteState
	offset := 0
	for offset <= len(rest) {
		lineEnd := strings.IndexByte(rest[offset:], '\n')
		var line string
		if lineEnd < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+lineEnd]
		}

		if !state.open() && strings.TrimSpace(line) == delim {
			header = rest[:offset]
			bodyStart := offset + len(line)
			if lineEnd >= 0 {
				bodyStart = offset + lineEnd + 1
			}
			return format, header, strings.TrimLeft(rest[bodyStart:], "\n"), nil
		}

		state.feedLine(line, format)

		if lineEnd < 0 {
			break
		}
		offset += lineEnd + 1
	}

	return HeaderNone, "", "", builderrors.ParseError(path, "unterminated frontmatter header")
}

// quoteState tracks whether a quoted value is still open across header lines.
type quoteState struct {
	quote rune // 0, '\'' or '"'
	multi bool // TOML triple-quoted string
}

func (s *quoteState) open() bool { return s.quote != 0 }

// feedLine advances the quoting state over one header line. Single-line
// strings implicitly terminate at end of line in TOML; YAML quoted scalars
// may continue onto the next line.
func (s *quoteState) feedLine(line string, format HeaderFormat) {
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if s.quote != 0 {
			// Backslash escapes apply inside double quotes only.
			if c == '\\' && s.quote == '"' && i+1 < len(runes) {
				i++
				continue
			}
			if c != s.quote {
				continue
			}
			if s.multi {
				if i+2 < len(runes) && runes[i+1] == s.quote && runes[i+2] == s.quote {
					s.quote, s.multi = 0, false
					i += 2
				}
				continue
			}
			s.quote = 0
			continue
		}

		switch c {
		case '#':
			if format == HeaderTOML {
				return // comment to end of line
			}
		case '"', '\'':
			if format == HeaderTOML && i+2 < len(runes) && runes[i+1] == c && runes[i+2] == c {
				s.quote, s.multi = c, true
				i += 2
				continue
			}
			s.quote, s.multi = c, false
		}
	}

	// TOML single-line strings cannot span lines.
	if format == HeaderTOML && s.quote != 0 && !s.multi {
		s.quote = 0
	}
}

// decodeHeader parses the raw header block into a generic field map.
func decodeHeader(format HeaderFormat, header, path string) (map[string]any, error) {
	fields := map[string]any{}
	switch format {
	case HeaderTOML:
		if err := toml.Unmarshal([]byte(header), &fields); err != nil {
			return nil, builderrors.ParseError(path, "invalid TOML header: "+err.Error())
		}
	case HeaderYAML:
		if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
			return nil, builderrors.ParseError(path, "invalid YAML header: "+err.Error())
		}
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
