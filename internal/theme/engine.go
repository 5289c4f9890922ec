// Package theme resolves and renders page templates: a builtin set, with
// per-name overrides from the project's templates/ directory.
package theme

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// Engine is a parsed template set. Built once per build and read-only
// afterwards.
type Engine struct {
	root    *template.Template
	builtin bool // no user overrides present
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"raw":     func(s string) template.HTML { return template.HTML(s) },
		"slugify": render.Slugify,
	}
}

// New parses the builtin templates and then applies overrides from each
// directory in turn: every *.html file replaces the template of the same
// directory-relative name, so later directories win. Empty or missing
// directories are skipped; no overrides yields the pure builtin theme.
func New(overrideDirs ...string) (*Engine, error) {
	root := template.New("theme").Funcs(templateFuncs())

	for name, src := range builtinTemplates {
		if _, err := root.New(name).Parse(src); err != nil {
			return nil, builderrors.InternalError("parse builtin template "+name, err)
		}
	}

	e := &Engine{root: root, builtin: true}
	for _, dir := range overrideDirs {
		if err := e.overlay(dir); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) overlay(overrideDir string) error {
	if overrideDir == "" {
		return nil
	}
	if _, err := os.Stat(overrideDir); os.IsNotExist(err) {
		return nil
	}

	root := e.root
	err := filepath.WalkDir(overrideDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return err
		}
		// user shortcode templates are handled by the expander
		if strings.Contains(filepath.ToSlash(p), "/shortcodes/") {
			return nil
		}
		rel, err := filepath.Rel(overrideDir, p)
		if err != nil {
			return builderrors.IOError("resolve template path", p, err)
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return builderrors.IOError("read template", p, err)
		}
		name := filepath.ToSlash(rel)
		if _, err := root.New(name).Parse(string(src)); err != nil {
			return builderrors.ParseError(name, err.Error())
		}
		e.builtin = false
		return nil
	})
	return err
}

// Has reports whether a template of that name exists. Used to honor
// per-file template metadata before falling back to the class default.
func (e *Engine) Has(name string) bool {
	return e.root.Lookup(name) != nil
}

// Render executes the named template with the given context.
func (e *Engine) Render(name string, ctx map[string]any) ([]byte, error) {
	tmpl := e.root.Lookup(name)
	if tmpl == nil {
		return nil, builderrors.ValidationError(name, "template", "no such template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, builderrors.InternalError("render template "+name, err)
	}
	return buf.Bytes(), nil
}

// UsesBuiltin reports whether the builtin theme (and its stylesheet) is in
// effect.
func (e *Engine) UsesBuiltin() bool {
	return e.builtin
}
