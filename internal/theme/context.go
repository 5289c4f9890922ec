package theme

import (
	"maps"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BaseContext builds the site-wide template context shared by every page:
// config, pages, posts, collections, taxonomy terms, and the merged data
// tree, all under the "site" key.
func BaseContext(m *site.Model) map[string]any {
	return map[string]any{
		"site": map[string]any{
			"config":      m.Config,
			"pages":       m.Pages,
			"posts":       m.Posts,
			"collections": m.Collections,
			"terms":       m.Terms,
			"data":        m.Data,
		},
	}
}

// With returns a copy of ctx extended with the given per-page fields.
func With(ctx map[string]any, fields map[string]any) map[string]any {
	out := make(map[string]any, len(ctx)+len(fields))
	maps.Copy(out, ctx)
	maps.Copy(out, fields)
	return out
}
