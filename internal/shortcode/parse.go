package shortcode

import (
	"fmt"
	"strings"
)

const (
	inlineOpen  = "{{<"
	inlineClose = ">}}"
	blockOpen   = "{{%"
	blockClose  = "%}}"
)

// Parse builds the directive tree for a markdown body. Directive-looking
// text inside fenced or indented code regions becomes plain text nodes.
func Parse(source string) ([]Node, error) {
	return parseNodes(source, 1)
}

func parseNodes(source string, depth int) ([]Node, error) {
	if depth > MaxNestingDepth {
		return nil, fmt.Errorf("directive nesting exceeds depth %d", MaxNestingDepth)
	}

	var nodes []Node
	var text strings.Builder

	flushText := func() {
		if text.Len() > 0 {
			nodes = append(nodes, Node{Kind: NodeText, Text: text.String()})
			text.Reset()
		}
	}

	rest := source
	for rest != "" {
		fencePos := nextFence(rest)
		inlinePos := strings.Index(rest, inlineOpen)
		blockPos := strings.Index(rest, blockOpen)
		directivePos := minIndex(inlinePos, blockPos)

		if fencePos >= 0 && (directivePos < 0 || fencePos < directivePos) {
			consumed := consumeFence(rest, fencePos)
			text.WriteString(rest[:consumed])
			rest = rest[consumed:]
			continue
		}

		if directivePos < 0 {
			text.WriteString(rest)
			break
		}

		// Directives on indented-code lines pass through literally.
		if onIndentedCodeLine(rest, directivePos) {
			lineEnd := strings.IndexByte(rest[directivePos:], '\n')
			end := len(rest)
			if lineEnd >= 0 {
				end = directivePos + lineEnd + 1
			}
			text.WriteString(rest[:end])
			rest = rest[end:]
			continue
		}

		text.WriteString(rest[:directivePos])
		rest = rest[directivePos:]

		var node Node
		var remaining string
		var err error
		if strings.HasPrefix(rest, blockOpen) {
			node, remaining, err = parseBlock(rest, depth)
		} else {
			node, remaining, err = parseInline(rest)
		}
		if err != nil {
			return nil, err
		}
		flushText()
		nodes = append(nodes, node)
		rest = remaining
	}

	flushText()
	return nodes, nil
}

func parseInline(input string) (Node, string, error) {
	after := input[len(inlineOpen):]
	closePos := strings.Index(after, inlineClose)
	if closePos < 0 {
		return Node{}, "", fmt.Errorf("unclosed inline directive, expected %s", inlineClose)
	}
	name, args, err := parseArgs(after[:closePos])
	if err != nil {
		return Node{}, "", err
	}
	return Node{Kind: NodeInline, Name: name, Args: args}, after[closePos+len(inlineClose):], nil
}

func parseBlock(input string, depth int) (Node, string, error) {
	after := input[len(blockOpen):]
	closePos := strings.Index(after, blockClose)
	if closePos < 0 {
		return Node{}, "", fmt.Errorf("unclosed block directive opening tag, expected %s", blockClose)
	}
	name, args, err := parseArgs(after[:closePos])
	if err != nil {
		return Node{}, "", err
	}

	body := after[closePos+len(blockClose):]
	closing := fmt.Sprintf("{{%% /%s %%}}", name)
	end := matchingClose(body, name, closing)
	if end < 0 {
		return Node{}, "", fmt.Errorf("missing closing tag for block directive %q", name)
	}

	children, err := parseNodes(strings.TrimSpace(body[:end]), depth+1)
	if err != nil {
		return Node{}, "", err
	}

	node := Node{Kind: NodeBlock, Name: name, Args: args, Children: children}
	return node, body[end+len(closing):], nil
}

// matchingClose finds the closing tag for name, skipping over same-named
// nested blocks.
func matchingClose(body, name, closing string) int {
	openWithArgs := fmt.Sprintf("{{%% %s ", name)
	openBare := fmt.Sprintf("{{%% %s %%}}", name)

	depth := 0
	from := 0
	for from < len(body) {
		nextOpen := minIndex(
			indexFrom(body, openWithArgs, from),
			indexFrom(body, openBare, from),
		)
		nextClose := indexFrom(body, closing, from)
		if nextClose < 0 {
			return -1
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			from = nextOpen + len(openWithArgs)
			continue
		}
		if depth == 0 {
			return nextClose
		}
		depth--
		from = nextClose + len(closing)
	}
	return -1
}

// nextFence returns the offset of the next ``` or ~~~ opener at line start.
func nextFence(s string) int {
	from := 0
	for from < len(s) {
		pos := minIndex(indexFrom(s, "```", from), indexFrom(s, "~~~", from))
		if pos < 0 {
			return -1
		}
		if pos == 0 || s[pos-1] == '\n' {
			return pos
		}
		from = pos + 3
	}
	return -1
}

// consumeFence returns how many bytes of s form the fenced block starting at
// fencePos, including everything before it. An unterminated fence consumes
// only the opening marker so scanning can continue.
func consumeFence(s string, fencePos int) int {
	marker := s[fencePos : fencePos+3]
	afterOpen := s[fencePos+3:]
	lineEnd := strings.IndexByte(afterOpen, '\n')
	if lineEnd < 0 {
		return fencePos + 3
	}
	inner := afterOpen[lineEnd+1:]
	closePos := closingFence(inner, marker)
	if closePos < 0 {
		return fencePos + 3
	}
	end := fencePos + 3 + lineEnd + 1 + closePos + 3
	if nl := strings.IndexByte(s[end:], '\n'); nl >= 0 {
		return end + nl + 1
	}
	return len(s)
}

// closingFence finds a closing marker at line start with nothing but
// whitespace after it on the line.
func closingFence(s, marker string) int {
	from := 0
	for from < len(s) {
		pos := indexFrom(s, marker, from)
		if pos < 0 {
			return -1
		}
		if pos == 0 || s[pos-1] == '\n' {
			restOfLine := s[pos+len(marker):]
			if nl := strings.IndexByte(restOfLine, '\n'); nl >= 0 {
				restOfLine = restOfLine[:nl]
			}
			if strings.TrimSpace(restOfLine) == "" {
				return pos
			}
		}
		from = pos + len(marker)
	}
	return -1
}

// onIndentedCodeLine reports whether the line containing pos starts with a
// tab or four spaces.
func onIndentedCodeLine(s string, pos int) bool {
	lineStart := strings.LastIndexByte(s[:pos], '\n') + 1
	line := s[lineStart:]
	return strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "    ")
}

func minIndex(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	pos := strings.Index(s[from:], substr)
	if pos < 0 {
		return -1
	}
	return from + pos
}
