// Package render turns expanded markdown into HTML documents with anchor
// ids, a table of contents, and text metrics.
package render

import (
	"bytes"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Document is the rendered form of one content file.
type Document struct {
	HTML        string
	Plain       string // visible text, markup stripped
	Headings    []Heading
	WordCount   int
	ReadingTime int // minutes
}

// Renderer wraps a configured markdown engine. Safe for concurrent use; the
// worker pool shares one instance.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer configures the markdown engine: tables, footnotes,
// strikethrough, task lists, and class-based syntax highlighting for fenced
// code. Raw HTML passes through because expanded directives inject
// fragments.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Footnote,
			extension.Strikethrough,
			extension.TaskList,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// Fragment renders markdown to HTML without the heading pass. Used for
// block-directive bodies, which land inside a parent document that gets its
// own pass.
func (r *Renderer) Fragment(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render produces the full Document for one content file: HTML with anchor
// ids unique within the document, the heading list, and word count and
// reading time computed over the stripped text.
func (r *Renderer) Render(markdown, path string) (Document, error) {
	fragment, err := r.Fragment(markdown)
	if err != nil {
		return Document{}, builderrors.ParseError(path, "markdown render: "+err.Error())
	}

	annotated, headings, err := annotateHeadings(fragment)
	if err != nil {
		return Document{}, builderrors.ParseError(path, "heading pass: "+err.Error())
	}

	plain := StripTags(annotated)
	words := CountWords(plain)

	return Document{
		HTML:        annotated,
		Plain:       plain,
		Headings:    headings,
		WordCount:   words,
		ReadingTime: ReadingTime(words),
	}, nil
}
