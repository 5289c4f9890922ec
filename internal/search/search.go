// Package search builds the static search index consumed by a client-side
// search library.
package search

import (
	"encoding/json"
	"sort"
	"strings"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// maxSnippetChars bounds the indexed text per document.
const maxSnippetChars = 5000

// Entry is one indexed document.
type Entry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"content_snippet"`
}

// Index builds the search index: home, posts, pages (except 404), and
// collection items, as pretty-printed JSON.
func Index(m *site.Model) ([]byte, error) {
	var entries []Entry

	add := func(item *site.Item) {
		entries = append(entries, Entry{
			Title:   item.File.Meta.Title,
			URL:     item.Route,
			Snippet: snippet(item.Doc.Plain),
		})
	}

	if m.Home != nil {
		add(m.Home)
	}
	for _, post := range m.Posts {
		add(post)
	}
	for _, page := range m.Pages {
		if page.File.Slug == "404" {
			continue
		}
		add(page)
	}
	names := make([]string, 0, len(m.Collections))
	for name := range m.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, item := range m.Collections[name] {
			add(item)
		}
	}

	if entries == nil {
		entries = []Entry{}
	}
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, builderrors.InternalError("encode search index", err)
	}
	return out, nil
}

// snippet collapses whitespace and truncates to the index bound.
func snippet(plain string) string {
	collapsed := strings.Join(strings.Fields(plain), " ")
	runes := []rune(collapsed)
	if len(runes) <= maxSnippetChars {
		return collapsed
	}
	return string(runes[:maxSnippetChars])
}
