package feeds

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/paginate"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// sitemapEntry is one url element; lastmod is optional.
type sitemapEntry struct {
	loc     string
	lastmod string
}

// Sitemap renders sitemap.xml with entries sorted by location, so an
// unchanged site yields byte-identical output. Duplicate locations are
// emitted once.
func Sitemap(m *site.Model) []byte {
	baseURL := strings.TrimRight(m.Config.BaseURL, "/")
	var entries []sitemapEntry
	seen := map[string]bool{}

	add := func(route, lastmod string) {
		loc := baseURL + route
		if seen[loc] {
			return
		}
		seen[loc] = true
		entries = append(entries, sitemapEntry{loc: loc, lastmod: lastmod})
	}

	add("/", "")

	for _, page := range m.Pages {
		if page.File.Slug == "404" {
			continue
		}
		add(page.Route, "")
	}

	for _, post := range m.Posts {
		lastmod := ""
		if !post.File.Date.IsZero() {
			lastmod = post.File.Date.UTC().Format("2006-01-02")
		}
		add(post.Route, lastmod)
	}

	// generated post list pages; page 1 is the home route
	if m.Config.PostsPerPage > 0 && len(m.Posts) > 0 {
		total := (len(m.Posts) + m.Config.PostsPerPage - 1) / m.Config.PostsPerPage
		for n := 2; n <= total; n++ {
			route := paginate.PageURL("/", n)
			if !m.RouteTaken(route) {
				add(route, "")
			}
		}
	}

	for _, name := range sortedKeys(m.Collections) {
		add("/"+name+"/", "")
		for _, item := range m.Collections[name] {
			add(item.Route, "")
		}
	}

	for _, taxonomy := range sortedKeys(m.Terms) {
		terms := m.Terms[taxonomy]
		if len(terms) == 0 {
			continue
		}
		if !m.RouteTaken("/" + taxonomy + "/") {
			add("/"+taxonomy+"/", "")
		}
		for _, term := range terms {
			if !m.RouteTaken(term.Route) {
				add(term.Route, "")
			}
			if m.Config.PostsPerPage > 0 {
				total := (len(term.Posts) + m.Config.PostsPerPage - 1) / m.Config.PostsPerPage
				for n := 2; n <= total; n++ {
					route := paginate.PageURL(term.Route, n)
					if !m.RouteTaken(route) {
						add(route, "")
					}
				}
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].loc < entries[j].loc })

	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	buf.WriteString("<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n")
	for _, e := range entries {
		if e.lastmod != "" {
			fmt.Fprintf(&buf, "  <url>\n    <loc>%s</loc>\n    <lastmod>%s</lastmod>\n  </url>\n", Escape(e.loc), e.lastmod)
		} else {
			fmt.Fprintf(&buf, "  <url>\n    <loc>%s</loc>\n  </url>\n", Escape(e.loc))
		}
	}
	buf.WriteString("</urlset>\n")
	return buf.Bytes()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
