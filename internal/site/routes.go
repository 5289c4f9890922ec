package site

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
)

// RouteFor computes the canonical output route for a content file. An
// explicit url field wins; otherwise the route follows from classification
// and slug. Routes are absolute, lowercase-preserving, and end in a slash
// (the root route is "/").
func RouteFor(f content.File) string {
	if f.Meta.URL != "" {
		return NormalizeRoute(f.Meta.URL)
	}
	switch f.Class {
	case content.ClassPost:
		return "/posts/" + f.Slug + "/"
	case content.ClassCollectionItem:
		return "/" + f.Collection + "/" + f.Slug + "/"
	default:
		if f.Slug == "index" {
			return "/"
		}
		return "/" + f.Slug + "/"
	}
}

// NormalizeRoute forces a leading and trailing slash.
func NormalizeRoute(route string) string {
	route = "/" + strings.Trim(route, "/")
	if route == "/" {
		return route
	}
	return route + "/"
}

// OutputPath maps a route to its file path in the output tree:
// "/" -> index.html, "/posts/hello/" -> posts/hello/index.html.
func OutputPath(route string) string {
	trimmed := strings.Trim(route, "/")
	if trimmed == "" {
		return "index.html"
	}
	return path.Join(trimmed, "index.html")
}

// BuildRefRegistry maps source-path spellings to routes for the ref
// directive. Each file registers under its content-relative path, its bare
// filename, and the path without the .md suffix.
func BuildRefRegistry(files []content.File) map[string]string {
	registry := make(map[string]string, len(files)*3)
	for _, f := range files {
		if f.Class == content.ClassDataFile {
			continue
		}
		route := RouteFor(f)

		rel := strings.TrimPrefix(f.SourcePath, "content/")
		registry[rel] = route
		registry[path.Base(rel)] = route
		if trimmed := strings.TrimSuffix(rel, ".md"); trimmed != rel {
			registry[trimmed] = route
		}
	}
	return registry
}
