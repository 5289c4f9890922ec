package site

import (
	"sort"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// Rendered pairs a loaded file with its rendered document. Data files carry
// an empty document.
type Rendered struct {
	File content.File
	Doc  render.Document
}

// Assemble builds the Model from the complete rendered item set. Route
// collisions between authored items and conflicting data leaves are fatal
// ConflictErrors naming both sources.
func Assemble(cfg *config.Config, items []Rendered) (*Model, error) {
	m := &Model{
		Config:      cfg,
		Collections: map[string][]*Item{},
		Terms:       map[string][]*Term{},
		BuiltAt:     time.Now().UTC(),
		routes:      map[string]*Item{},
	}

	data := newDataMerger()
	for _, r := range items {
		if r.File.Class == content.ClassDataFile {
			if err := data.addFile(r.File); err != nil {
				return nil, err
			}
			continue
		}

		item := &Item{
			File:    r.File,
			Doc:     r.Doc,
			Route:   RouteFor(r.File),
			Excerpt: excerptFor(r.File),
		}
		item.OutPath = OutputPath(item.Route)

		if existing, taken := m.routes[item.Route]; taken {
			return nil, builderrors.RouteConflictError(item.Route, r.File.SourcePath, existing.File.SourcePath)
		}
		m.routes[item.Route] = item

		switch r.File.Class {
		case content.ClassPost:
			m.Posts = append(m.Posts, item)
		case content.ClassCollectionItem:
			m.Collections[r.File.Collection] = append(m.Collections[r.File.Collection], item)
		case content.ClassDirectoryIndex:
			if item.Route == "/" {
				m.Home = item
			} else {
				m.Pages = append(m.Pages, item)
			}
		default:
			m.Pages = append(m.Pages, item)
		}
	}

	sortPosts(m.Posts)
	linkPosts(m.Posts)
	sortByWeight(m.Pages)
	for _, items := range m.Collections {
		sortByWeight(items)
	}

	m.Data = data.tree
	m.Terms = buildTaxonomies(cfg, m.Posts)
	m.Redirects = buildRedirects(m)

	return m, nil
}

func excerptFor(f content.File) string {
	if f.Meta.Excerpt != "" {
		return f.Meta.Excerpt
	}
	return render.Excerpt(f.Body)
}

// sortPosts orders newest first; equal dates fall back to source path so the
// order is a strict total order.
func sortPosts(posts []*Item) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.File.Date.Equal(b.File.Date) {
			return a.File.Date.After(b.File.Date)
		}
		return a.File.SourcePath < b.File.SourcePath
	})
}

// linkPosts assigns prev/next pointers over the sorted order. Prev is the
// newer neighbor.
func linkPosts(posts []*Item) {
	for i, post := range posts {
		if i > 0 {
			post.Prev = posts[i-1]
		}
		if i < len(posts)-1 {
			post.Next = posts[i+1]
		}
	}
}

func sortByWeight(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.File.Meta.Weight != b.File.Meta.Weight {
			return a.File.Meta.Weight < b.File.Meta.Weight
		}
		return a.File.Slug < b.File.Slug
	})
}

// buildTaxonomies groups posts under every term of every configured
// taxonomy. Term post lists inherit the global post order; terms sort by
// slug for deterministic output.
func buildTaxonomies(cfg *config.Config, posts []*Item) map[string][]*Term {
	out := make(map[string][]*Term, len(cfg.Taxonomies))
	for taxonomy, metaKey := range cfg.Taxonomies {
		byName := map[string]*Term{}
		for _, post := range posts {
			for _, name := range post.File.Meta.TermsFor(metaKey) {
				term, ok := byName[name]
				if !ok {
					slug := render.Slugify(name)
					term = &Term{
						Taxonomy: taxonomy,
						Name:     name,
						Slug:     slug,
						Route:    "/" + taxonomy + "/" + slug + "/",
					}
					byName[name] = term
				}
				term.Posts = append(term.Posts, post)
			}
		}

		terms := make([]*Term, 0, len(byName))
		for _, term := range byName {
			terms = append(terms, term)
		}
		sort.Slice(terms, func(i, j int) bool { return terms[i].Slug < terms[j].Slug })
		out[taxonomy] = terms
	}
	return out
}

// buildRedirects collects redirect-from stubs. A stub that would land on an
// authored route is dropped: generated output never overwrites authored
// content.
func buildRedirects(m *Model) []Redirect {
	var redirects []Redirect
	for _, item := range m.AllItems() {
		for _, from := range item.File.Meta.RedirectFrom {
			route := NormalizeRoute(from)
			if m.RouteTaken(route) {
				continue
			}
			redirects = append(redirects, Redirect{From: route, To: item.Route})
		}
	}
	sort.Slice(redirects, func(i, j int) bool { return redirects[i].From < redirects[j].From })
	return redirects
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
