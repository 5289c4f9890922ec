// Package shortcode parses and expands inline `{{< name ... >}}` and block
// `{{% name %}}...{{% /name %}}` directives embedded in markdown. Fenced and
// indented code regions are inert: directive-looking text inside them passes
// through untouched.
package shortcode

// NodeKind discriminates the parse-tree variants.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeInline
	NodeBlock
)

// Node is one element of the parsed directive tree. Text nodes carry literal
// markdown; inline and block nodes carry a directive name and its arguments,
// block nodes additionally a parsed body.
type Node struct {
	Kind     NodeKind
	Text     string
	Name     string
	Args     map[string]string
	Children []Node
}

// MaxNestingDepth bounds block-directive nesting. Deeper trees are rejected
// at parse time instead of recursing without limit.
const MaxNestingDepth = 16

// positionalKey stores an unnamed quoted argument, e.g. {{< ref "about.md" >}}.
const positionalKey = "_positional"
