package shortcode

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// BodyRenderer turns a block directive's markdown body into HTML before it
// is handed to the directive template. Nil leaves the body as raw text.
type BodyRenderer func(markdown string) (string, error)

// Expander resolves parsed directive trees against templates. One Expander
// serves a whole build; the ref registry is filled in once all routes are
// known.
type Expander struct {
	templates  map[string]*template.Template
	refs       map[string]string
	renderBody BodyRenderer
}

// NewExpander loads the built-in directive templates plus any user templates
// found in dirs (each *.html file registers under its stem name).
func NewExpander(dirs []string, renderBody BodyRenderer) (*Expander, error) {
	e := &Expander{
		templates:  make(map[string]*template.Template, len(builtinTemplates)),
		refs:       map[string]string{},
		renderBody: renderBody,
	}

	for name, body := range builtinTemplates {
		tpl, err := template.New(name).Parse(body)
		if err != nil {
			return nil, builderrors.InternalError("parse built-in directive template "+name, err)
		}
		e.templates[name] = tpl
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // optional directory
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
				continue
			}
			raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, builderrors.IOError("read shortcode template", filepath.Join(dir, entry.Name()), err)
			}
			name := strings.TrimSuffix(entry.Name(), ".html")
			tpl, err := template.New(name).Parse(string(raw))
			if err != nil {
				return nil, builderrors.ConfigInvalid(filepath.Join(dir, entry.Name()), "invalid shortcode template: "+err.Error())
			}
			e.templates[name] = tpl
		}
	}

	return e, nil
}

// SetRefRegistry installs the source-path to route-URL mapping used by the
// ref directive.
func (e *Expander) SetRefRegistry(refs map[string]string) {
	e.refs = refs
}

// Expand parses and expands all directives in a markdown body. path scopes
// error reports to the file being processed.
func (e *Expander) Expand(source, path string) (string, error) {
	nodes, err := Parse(source)
	if err != nil {
		return "", builderrors.ShortcodeParseError(path, err.Error())
	}
	return e.expandNodes(nodes, path)
}

func (e *Expander) expandNodes(nodes []Node, path string) (string, error) {
	var out strings.Builder
	for _, node := range nodes {
		fragment, err := e.expandNode(node, path)
		if err != nil {
			return "", err
		}
		out.WriteString(fragment)
	}
	return out.String(), nil
}

func (e *Expander) expandNode(node Node, path string) (string, error) {
	switch node.Kind {
	case NodeText:
		return node.Text, nil
	case NodeInline:
		if node.Name == "ref" {
			return e.resolveRef(node, path)
		}
		return e.render(node.Name, node.Args, nil, path)
	case NodeBlock:
		body, err := e.expandNodes(node.Children, path)
		if err != nil {
			return "", err
		}
		if e.renderBody != nil {
			body, err = e.renderBody(body)
			if err != nil {
				return "", builderrors.ShortcodeParseError(path, fmt.Sprintf("render body of %q: %v", node.Name, err))
			}
		}
		return e.render(node.Name, node.Args, &body, path)
	}
	return "", builderrors.InternalError(fmt.Sprintf("unknown directive node kind %d", node.Kind), nil)
}

func (e *Expander) resolveRef(node Node, path string) (string, error) {
	target := node.Args[positionalKey]
	if target == "" {
		target = node.Args["path"]
	}
	if target == "" {
		return "", builderrors.ShortcodeParseError(path, "ref directive requires a path argument")
	}
	url, ok := e.refs[target]
	if !ok {
		return "", builderrors.ValidationError(path, "ref", "broken reference: "+target)
	}
	return url, nil
}

func (e *Expander) render(name string, args map[string]string, body *string, path string) (string, error) {
	tpl, ok := e.templates[name]
	if !ok {
		return "", builderrors.UnknownShortcodeError(path, name)
	}

	ctx := make(map[string]any, len(args)+1)
	for k, v := range args {
		ctx[k] = v
	}
	if body != nil {
		ctx["body"] = template.HTML(*body)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, ctx); err != nil {
		return "", builderrors.ShortcodeParseError(path, fmt.Sprintf("render directive %q: %v", name, err))
	}
	return buf.String(), nil
}
