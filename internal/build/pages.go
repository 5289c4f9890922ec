package build

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/paginate"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/theme"
)

// renderPages renders every routed page of the model through the theme
// engine and writes it under the output directory. Returns the number of
// HTML pages written.
func renderPages(engine *theme.Engine, m *site.Model, w *output.Writer) (int, error) {
	r := &pageRenderer{engine: engine, model: m, writer: w, base: theme.BaseContext(m)}

	steps := []func() error{
		r.home,
		r.pages,
		r.notFound,
		r.posts,
		r.collections,
		r.taxonomies,
		r.search,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return r.written, err
		}
	}
	return r.written, nil
}

type pageRenderer struct {
	engine  *theme.Engine
	model   *site.Model
	writer  *output.Writer
	base    map[string]any
	written int
}

// render executes the named template and writes the result to outPath.
func (r *pageRenderer) render(name, outPath string, fields map[string]any) error {
	body, err := r.engine.Render(name, theme.With(r.base, fields))
	if err != nil {
		return err
	}
	if err := r.writer.WriteFile(outPath, body); err != nil {
		return err
	}
	r.written++
	return nil
}

// templateFor picks the frontmatter-declared template when the theme has
// it, otherwise the fallback.
func (r *pageRenderer) templateFor(item *site.Item, fallback string) string {
	if t := item.File.Meta.Template; t != "" && r.engine.Has(t) {
		return t
	}
	return fallback
}

// routeOutPath maps a generated route ("/page/2/") to its output file
// ("page/2/index.html").
func routeOutPath(route string) string {
	return strings.TrimPrefix(route, "/") + "index.html"
}

// paginationFields are the context keys the listing templates read.
func paginationFields(p paginate.Page[*site.Item]) map[string]any {
	return map[string]any{
		"posts":         p.Items,
		"current_page":  p.Index,
		"total_pages":   p.Total,
		"prev_page_url": p.Prev,
		"next_page_url": p.Next,
	}
}

// home renders the site index and its pagination tail. Page 1 lives at
// index.html; pages 2..N at /page/N/ unless an authored page owns that
// route.
func (r *pageRenderer) home() error {
	pages := paginate.Paginate(r.model.Posts, r.model.Config.PostsPerPage, "/")
	for _, p := range pages {
		if p.Index == 1 {
			fields := paginationFields(p)
			fields["home"] = r.model.Home
			name := "index.html"
			if r.model.Home != nil {
				name = r.templateFor(r.model.Home, name)
			}
			if err := r.render(name, "index.html", fields); err != nil {
				return err
			}
			continue
		}
		route := paginate.PageURL("/", p.Index)
		if r.model.RouteTaken(route) {
			continue
		}
		fields := paginationFields(p)
		fields["title"] = "Posts"
		if err := r.render("list.html", routeOutPath(route), fields); err != nil {
			return err
		}
	}
	return nil
}

func (r *pageRenderer) pages() error {
	for _, page := range r.model.Pages {
		if page.File.Slug == "404" {
			continue
		}
		fields := map[string]any{
			"page":  page,
			"title": page.File.Meta.Title,
		}
		if err := r.render(r.templateFor(page, "page.html"), page.OutPath, fields); err != nil {
			return err
		}
	}
	return nil
}

// notFound writes 404.html from the authored 404 page when one exists,
// otherwise from the builtin template.
func (r *pageRenderer) notFound() error {
	for _, page := range r.model.Pages {
		if page.File.Slug != "404" {
			continue
		}
		fields := map[string]any{
			"page":  page,
			"title": page.File.Meta.Title,
		}
		return r.render(r.templateFor(page, "404.html"), "404.html", fields)
	}
	return r.render("404.html", "404.html", map[string]any{"title": "Page not found"})
}

func (r *pageRenderer) posts() error {
	for _, post := range r.model.Posts {
		fields := map[string]any{
			"post":      post,
			"prev_post": post.Prev,
			"next_post": post.Next,
			"title":     post.File.Meta.Title,
		}
		if err := r.render(r.templateFor(post, "post.html"), post.OutPath, fields); err != nil {
			return err
		}
	}
	return nil
}

func (r *pageRenderer) collections() error {
	names := make([]string, 0, len(r.model.Collections))
	for name := range r.model.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		items := r.model.Collections[name]
		indexRoute := "/" + name + "/"
		if !r.model.RouteTaken(indexRoute) {
			fields := map[string]any{
				"collection_name": name,
				"items":           items,
				"title":           name,
			}
			if err := r.render("collection.html", routeOutPath(indexRoute), fields); err != nil {
				return err
			}
		}
		for _, item := range items {
			fields := map[string]any{
				"item":  item,
				"title": item.File.Meta.Title,
			}
			if err := r.render(r.templateFor(item, "collection_item.html"), item.OutPath, fields); err != nil {
				return err
			}
		}
	}
	return nil
}

// taxonomies renders each taxonomy's term index plus one paginated listing
// per term. Every generated route steps aside for authored content.
func (r *pageRenderer) taxonomies() error {
	keys := make([]string, 0, len(r.model.Terms))
	for key := range r.model.Terms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		terms := r.model.Terms[key]
		indexRoute := "/" + key + "/"
		if !r.model.RouteTaken(indexRoute) {
			fields := map[string]any{
				"taxonomy": key,
				"terms":    terms,
				"title":    key,
			}
			if err := r.render("taxonomy_terms.html", routeOutPath(indexRoute), fields); err != nil {
				return err
			}
		}
		for _, term := range terms {
			if err := r.term(term); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *pageRenderer) term(term *site.Term) error {
	pages := paginate.Paginate(term.Posts, r.model.Config.PostsPerPage, term.Route)
	for _, p := range pages {
		route := paginate.PageURL(term.Route, p.Index)
		if r.model.RouteTaken(route) {
			continue
		}
		fields := paginationFields(p)
		fields["title"] = term.Name
		fields["term_name"] = term.Name
		fields["term_slug"] = term.Slug
		fields["taxonomy"] = term.Taxonomy
		if err := r.render("list.html", routeOutPath(route), fields); err != nil {
			return err
		}
	}
	return nil
}

func (r *pageRenderer) search() error {
	if r.model.RouteTaken("/search/") {
		return nil
	}
	return r.render("search.html", routeOutPath("/search/"), map[string]any{"title": "Search"})
}
