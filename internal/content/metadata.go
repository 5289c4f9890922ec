package content

import (
	"fmt"
	"time"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Metadata holds the recognized frontmatter fields of a content file.
// Unrecognized fields remain available through Extra (custom taxonomies,
// theme parameters).
type Metadata struct {
	Title        string
	Date         *time.Time
	Draft        bool
	Tags         []string
	Categories   []string
	Weight       int
	Template     string
	Excerpt      string
	RedirectFrom []string
	URL          string

	Extra map[string]any
}

// dateLayouts accepted for the `date` field and filename-derived dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// decodeMetadata coerces a generic header field map into Metadata.
// Type mismatches and unparseable dates are ValidationErrors scoped to path.
func decodeMetadata(fields map[string]any, path string) (Metadata, error) {
	meta := Metadata{Extra: fields}

	meta.Title, _ = fields["title"].(string)
	meta.Draft, _ = fields["draft"].(bool)
	meta.Template, _ = fields["template"].(string)
	meta.Excerpt, _ = fields["excerpt"].(string)
	meta.URL, _ = fields["url"].(string)
	meta.Tags = stringSlice(fields["tags"])
	meta.Categories = stringSlice(fields["categories"])
	meta.RedirectFrom = stringSlice(fields["redirect_from"])

	if raw, ok := fields["weight"]; ok {
		w, err := intValue(raw)
		if err != nil {
			return meta, builderrors.ValidationError(path, "weight", err.Error())
		}
		meta.Weight = w
	}

	if raw, ok := fields["date"]; ok {
		switch v := raw.(type) {
		case time.Time:
			meta.Date = &v
		case string:
			parsed, err := parseDate(v)
			if err != nil {
				return meta, builderrors.ValidationError(path, "date", err.Error())
			}
			meta.Date = &parsed
		default:
			return meta, builderrors.ValidationError(path, "date", fmt.Sprintf("unsupported type %T", raw))
		}
	}

	return meta, nil
}

// parseDate parses a date string, rejecting calendar-invalid values
// (time.Parse refuses month 13 or day 32).
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func stringSlice(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intValue(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", raw)
}

// TermsFor returns the taxonomy term values stored under key, for
// config-declared taxonomies beyond tags/categories.
func (m Metadata) TermsFor(key string) []string {
	switch key {
	case "tags":
		return m.Tags
	case "categories":
		return m.Categories
	}
	if m.Extra == nil {
		return nil
	}
	return stringSlice(m.Extra[key])
}
