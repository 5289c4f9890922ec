// Package site assembles rendered content into the immutable per-build site
// model: routes, ordered posts, taxonomy terms, merged data, redirects. One
// Model is built per build and never mutated; the next build replaces it
// wholesale.
package site

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// Item is one routed piece of content: source file, rendered document,
// canonical route, and derived summary fields.
type Item struct {
	File    content.File
	Doc     render.Document
	Route   string
	OutPath string
	Excerpt string

	// Prev and Next are set for posts, nil elsewhere. Prev points at the
	// newer post, Next at the older one.
	Prev *Item
	Next *Item
}

// Term is one taxonomy value with its member posts, newest first.
type Term struct {
	Taxonomy string
	Name     string
	Slug     string
	Route    string
	Posts    []*Item
}

// Redirect is a stub page at From that points readers to To.
type Redirect struct {
	From string
	To   string
}

// Model is the complete assembled site for one build.
type Model struct {
	Config      *config.Config
	Home        *Item
	Pages       []*Item            // weight asc, slug tiebreak
	Posts       []*Item            // date desc, source-path tiebreak
	Collections map[string][]*Item // collection name -> items, weight/slug order
	Terms       map[string][]*Term // taxonomy key -> terms, slug order
	Data        map[string]any
	Redirects   []Redirect
	BuiltAt     time.Time

	routes map[string]*Item // authored routes only
}

// Lookup returns the authored item at route, or nil.
func (m *Model) Lookup(route string) *Item {
	return m.routes[route]
}

// RouteTaken reports whether an authored item already owns route. Generated
// routes (taxonomy listings, pagination, search) consult this and step aside
// instead of overwriting authored content.
func (m *Model) RouteTaken(route string) bool {
	_, ok := m.routes[route]
	return ok
}

// AllItems returns every authored item in deterministic order: home, pages,
// posts, then collections by name.
func (m *Model) AllItems() []*Item {
	items := make([]*Item, 0, len(m.routes))
	if m.Home != nil {
		items = append(items, m.Home)
	}
	items = append(items, m.Pages...)
	items = append(items, m.Posts...)
	for _, name := range sortedKeys(m.Collections) {
		items = append(items, m.Collections[name]...)
	}
	return items
}
