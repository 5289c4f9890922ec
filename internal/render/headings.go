package render

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is a table-of-contents entry. Text is the visible heading text
// with inline markup stripped; the heading element itself keeps its inline
// HTML.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// idRegistry hands out document-unique anchor ids. A collision gets a
// numeric suffix: intro, intro-2, intro-3.
type idRegistry map[string]struct{}

func (r idRegistry) assign(base string) string {
	if base == "" {
		base = "section"
	}
	candidate := base
	for n := 2; ; n++ {
		if _, taken := r[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	r[candidate] = struct{}{}
	return candidate
}

// annotateHeadings assigns anchor ids to h1-h6 elements and collects the
// table of contents. An id already present on a heading (hand-written HTML)
// is kept and registered so generated ids cannot collide with it.
func annotateHeadings(fragment string) (string, []Heading, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", nil, err
	}

	ids := idRegistry{}
	var headings []Heading

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				text := strings.TrimSpace(nodeText(n))
				id := existingAttr(n, "id")
				if id == "" {
					id = ids.assign(Slugify(text))
					n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
				} else {
					ids[id] = struct{}{}
				}
				headings = append(headings, Heading{Level: level, Text: text, ID: id})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", nil, err
		}
	}
	return buf.String(), headings, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// nodeText concatenates the text descendants of n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func existingAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
